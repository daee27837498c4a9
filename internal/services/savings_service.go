package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/ledger"
	"kopilka/internal/models"
	"kopilka/internal/pagination"
)

// savingsService handles per-currency savings balances.
type savingsService struct {
	db *gorm.DB
}

// NewSavingsService creates a new SavingsServicer.
func NewSavingsService(db *gorm.DB) SavingsServicer {
	return &savingsService{db: db}
}

// GetOrCreateSavings returns the user's balance in currency, creating it
// with initialAmount when it does not exist yet. Concurrent calls converge
// on a single row. The initial amount is ignored for an existing balance.
func (s *savingsService) GetOrCreateSavings(userID, currency string, initialAmount decimal.Decimal) (*models.Savings, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be a 3-letter ISO 4217 code")
	}
	if initialAmount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "initial amount must not be negative")
	}
	if err := ledger.CheckMoney("initial amount", initialAmount); err != nil {
		return nil, err
	}

	var savings models.Savings
	err := s.db.Transaction(func(tx *gorm.DB) error {
		candidate := &models.Savings{
			UserID:   userID,
			Currency: currency,
			Amount:   initialAmount,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "currency"}},
			DoNothing: true,
		}).Create(candidate)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 1 && initialAmount.IsPositive() {
			entry := &models.SavingsTransaction{
				SavingsID:   candidate.ID,
				Amount:      initialAmount,
				Type:        models.SavingsOperationAdd,
				Description: "Initial balance",
			}
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}

		return tx.Where("user_id = ? AND currency = ?", userID, currency).First(&savings).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &savings, nil
}

// GetUserSavings lists every savings balance of the user with its history,
// the first opened balance first.
func (s *savingsService) GetUserSavings(userID string) ([]models.Savings, error) {
	savings := []models.Savings{}
	if err := s.db.
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&savings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return savings, nil
}

// UpdateSavings adds to or subtracts from a balance. The balance never goes
// below zero. The new balance and its log entry are written together with
// the savings row locked.
func (s *savingsService) UpdateSavings(userID, savingsID string, amount decimal.Decimal, op models.SavingsOperation, description string) (*models.Savings, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		description = ledger.SavingsDescription(op)
	}

	var savings *models.Savings
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		savings, err = findOwned[models.Savings](tx, userID, savingsID, ownedByUser, apperrors.ErrSavingsNotFound, true)
		if err != nil {
			return err
		}

		signed, balance, err := ledger.ApplySavings(savings.Amount, amount, op)
		if err != nil {
			return err
		}

		if err := tx.Model(savings).Update("amount", balance).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		savings.Amount = balance

		entry := &models.SavingsTransaction{
			SavingsID:   savings.ID,
			Amount:      signed,
			Type:        op,
			Description: description,
		}
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return savings, nil
}

// GetSavingsTransactions returns a page of a balance's history, newest first.
func (s *savingsService) GetSavingsTransactions(userID, savingsID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsTransaction], error) {
	if _, err := findOwned[models.Savings](s.db, userID, savingsID, ownedByUser, apperrors.ErrSavingsNotFound, false); err != nil {
		return nil, err
	}

	page.Defaults()

	var totalItems int64
	if err := s.db.Model(&models.SavingsTransaction{}).Where("savings_id = ?", savingsID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.SavingsTransaction
	if err := s.db.Where("savings_id = ?", savingsID).
		Scopes(pagination.Paginate(page)).
		Order("created_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}
