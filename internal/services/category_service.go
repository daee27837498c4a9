package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/ledger"
	"kopilka/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// attachSpent fills Spent on each category from its transactions.
func attachSpent(db *gorm.DB, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}

	var txs []models.Transaction
	if err := db.Where("category_id IN ?", ids).Find(&txs).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byCategory := make(map[string][]models.Transaction, len(categories))
	for _, tx := range txs {
		byCategory[*tx.CategoryID] = append(byCategory[*tx.CategoryID], tx)
	}
	for i := range categories {
		categories[i].Spent = ledger.Spent(byCategory[categories[i].ID])
	}
	return nil
}

// categoryTransactions returns every transaction attached to a category.
func categoryTransactions(db *gorm.DB, categoryID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := db.Where("category_id = ?", categoryID).Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// AddCategory adds a category to one of the user's budgets.
func (s *categoryService) AddCategory(userID, budgetID, name, icon, color string, budgetAmount decimal.Decimal) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !budgetAmount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be positive")
	}
	if err := ledger.CheckMoney("budget amount", budgetAmount); err != nil {
		return nil, err
	}

	if _, err := findOwned[models.Budget](s.db, userID, budgetID, ownedByUser, apperrors.ErrBudgetNotFound, false); err != nil {
		return nil, err
	}

	category := &models.Category{
		BudgetID:     budgetID,
		Name:         name,
		Icon:         icon,
		Color:        color,
		BudgetAmount: budgetAmount,
		Spent:        decimal.Zero,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetCategoryByID retrieves a category with its derived spending.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	category, err := findOwned[models.Category](s.db, userID, categoryID, categoryOwnedByUser, apperrors.ErrCategoryNotFound, false)
	if err != nil {
		return nil, err
	}

	txs, err := categoryTransactions(s.db, category.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	category.Spent = ledger.Spent(txs)

	return category, nil
}

// UpdateCategory applies a planned amount change and/or moves the category's
// spending to the requested total by writing one correcting transaction.
// Both happen in one database transaction with the category row locked.
func (s *categoryService) UpdateCategory(userID, categoryID string, update CategoryUpdate) (*models.Category, error) {
	if update.BudgetAmount != nil {
		if !update.BudgetAmount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount must be positive")
		}
		if err := ledger.CheckMoney("budget amount", *update.BudgetAmount); err != nil {
			return nil, err
		}
	}
	if update.Spent != nil {
		if update.Spent.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "spent must not be negative")
		}
		if err := ledger.CheckMoney("spent", *update.Spent); err != nil {
			return nil, err
		}
	}

	var category *models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		category, err = findOwned[models.Category](tx, userID, categoryID, categoryOwnedByUser, apperrors.ErrCategoryNotFound, true)
		if err != nil {
			return err
		}

		if update.BudgetAmount != nil {
			if err := tx.Model(category).Update("budget_amount", *update.BudgetAmount).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			category.BudgetAmount = *update.BudgetAmount
		}

		txs, err := categoryTransactions(tx, category.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		current := ledger.SignedSpent(txs)

		if update.Spent != nil {
			txType, amount, ok := ledger.Correction(current, *update.Spent)
			if ok {
				categoryRef := category.ID
				correction := &models.Transaction{
					UserID:      userID,
					CategoryID:  &categoryRef,
					Type:        txType,
					Amount:      amount,
					Description: ledger.CorrectionDescription(txType),
					Date:        time.Now().UTC(),
				}
				if err := tx.Create(correction).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
				txs = append(txs, *correction)
			}
		}

		category.Spent = ledger.Spent(txs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory deletes a category. Its transactions are kept without a category.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		category, err := findOwned[models.Category](tx, userID, categoryID, categoryOwnedByUser, apperrors.ErrCategoryNotFound, true)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
