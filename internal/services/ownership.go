package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "kopilka/internal/errors"
)

// ownerScope restricts a query to rows that belong to userID.
type ownerScope func(db *gorm.DB, userID string) *gorm.DB

// ownedByUser applies to tables that carry a user_id column.
func ownedByUser(db *gorm.DB, userID string) *gorm.DB {
	return db.Where("user_id = ?", userID)
}

// categoryOwnedByUser reaches the owner through the category's budget.
func categoryOwnedByUser(db *gorm.DB, userID string) *gorm.DB {
	return db.Where("budget_id IN (SELECT id FROM budgets WHERE user_id = ?)", userID)
}

// findOwned loads the row with the given id when it belongs to userID.
// Missing and foreign rows both yield notFound. With forUpdate the row is
// locked until the surrounding transaction ends.
func findOwned[T any](db *gorm.DB, userID, id string, owned ownerScope, notFound *apperrors.AppError, forUpdate bool) (*T, error) {
	var row T
	q := owned(db.Where("id = ?", id), userID)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &row, nil
}
