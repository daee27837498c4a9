package models

import "github.com/shopspring/decimal"

// Budget is a user's planned spending envelope for one calendar month.
// There is at most one budget per (user, month, year).
type Budget struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;uniqueIndex:uq_budgets_user_period" json:"user_id"`
	Month       int             `gorm:"not null;uniqueIndex:uq_budgets_user_period" json:"month"`
	Year        int             `gorm:"not null;uniqueIndex:uq_budgets_user_period" json:"year"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`

	// Relationships
	Categories []Category `gorm:"foreignKey:BudgetID" json:"categories"`
}
