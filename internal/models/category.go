package models

import "github.com/shopspring/decimal"

// Category is a named spending bucket inside a budget.
type Category struct {
	Base
	BudgetID     string          `gorm:"type:uuid;not null;index" json:"budget_id"`
	Name         string          `gorm:"not null" json:"name"`
	Icon         string          `json:"icon"`
	Color        string          `json:"color"`
	BudgetAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"budget_amount"`

	// Spent is derived from the category's transactions on every read.
	Spent decimal.Decimal `gorm:"-" json:"spent"`

	// Relationships
	Budget       *Budget       `gorm:"foreignKey:BudgetID" json:"budget,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
