package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/ledger"
	"kopilka/internal/models"
)

// budgetService handles monthly budget business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

func validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if year < 1970 || year > 9999 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "year is out of range")
	}
	return nil
}

// GetBudget returns the user's budget for the period with every category
// annotated with its derived spending, or nil if there is none.
func (s *budgetService) GetBudget(userID string, month, year int) (*models.Budget, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	var budget models.Budget
	err := s.db.
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := attachSpent(s.db, budget.Categories); err != nil {
		return nil, err
	}
	return &budget, nil
}

// CreateBudget creates the budget for a period. An existing budget for the
// same period is replaced together with its categories; transactions that
// pointed at the old categories are kept but detached.
func (s *budgetService) CreateBudget(userID string, month, year int, total decimal.Decimal, categories []BudgetCategoryInput) (*models.Budget, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	if !total.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total amount must be positive")
	}
	if err := ledger.CheckMoney("total amount", total); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:      userID,
		Month:       month,
		Year:        year,
		TotalAmount: total,
		Categories:  make([]models.Category, 0, len(categories)),
	}
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		if !c.BudgetAmount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category budget amount must be positive")
		}
		if err := ledger.CheckMoney("category budget amount", c.BudgetAmount); err != nil {
			return nil, err
		}
		budget.Categories = append(budget.Categories, models.Category{
			Name:         name,
			Icon:         c.Icon,
			Color:        c.Color,
			BudgetAmount: c.BudgetAmount,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Budget
		err := tx.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).First(&existing).Error
		switch {
		case err == nil:
			if err := deleteBudget(tx, existing.ID); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(budget).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// deleteBudget removes a budget and its categories, detaching their transactions.
func deleteBudget(tx *gorm.DB, budgetID string) error {
	if err := tx.Model(&models.Transaction{}).
		Where("category_id IN (SELECT id FROM categories WHERE budget_id = ?)", budgetID).
		Update("category_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Where("budget_id = ?", budgetID).Delete(&models.Category{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", budgetID).Delete(&models.Budget{}).Error
}

// UpdateBudgetTotal changes the planned total of a budget.
func (s *budgetService) UpdateBudgetTotal(userID, budgetID string, total decimal.Decimal) (*models.Budget, error) {
	if !total.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total amount must be positive")
	}
	if err := ledger.CheckMoney("total amount", total); err != nil {
		return nil, err
	}

	budget, err := findOwned[models.Budget](s.db, userID, budgetID, ownedByUser, apperrors.ErrBudgetNotFound, false)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(budget).Update("total_amount", total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.TotalAmount = total

	return budget, nil
}
