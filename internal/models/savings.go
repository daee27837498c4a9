package models

import "github.com/shopspring/decimal"

// SavingsOperation is the direction of a savings balance change
type SavingsOperation string

const (
	SavingsOperationAdd      SavingsOperation = "ADD"
	SavingsOperationSubtract SavingsOperation = "SUBTRACT"
)

// Savings is a per-currency balance kept outside the monthly budget.
// Amount never goes negative.
type Savings struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;uniqueIndex:uq_savings_user_currency" json:"user_id"`
	Currency string          `gorm:"size:3;not null;uniqueIndex:uq_savings_user_currency" json:"currency"`
	Amount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"amount"`

	// Relationships
	Transactions []SavingsTransaction `gorm:"foreignKey:SavingsID" json:"transactions,omitempty"`
}

// SavingsTransaction is the append-only log of savings balance changes.
// Amount is signed.
type SavingsTransaction struct {
	Base
	SavingsID   string           `gorm:"type:uuid;not null;index" json:"savings_id"`
	Amount      decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"amount"`
	Type        SavingsOperation `gorm:"not null" json:"type"`
	Description string           `json:"description,omitempty"`
}
