package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/ledger"
	"kopilka/internal/models"
	"kopilka/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction records an income or expense. A category, when given,
// must belong to one of the user's budgets.
func (s *transactionService) CreateTransaction(
	userID string,
	categoryID *string,
	transactionType models.TransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if transactionType != models.TransactionTypeExpense && transactionType != models.TransactionTypeIncome {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}
	if err := ledger.CheckMoney("amount", amount); err != nil {
		return nil, err
	}
	if categoryID != nil && *categoryID == "" {
		categoryID = nil
	}
	if categoryID != nil {
		if _, err := findOwned[models.Category](s.db, userID, *categoryID, categoryOwnedByUser, apperrors.ErrCategoryNotFound, false); err != nil {
			return nil, err
		}
	}
	if date.IsZero() {
		date = time.Now()
	}
	date = date.UTC()

	transaction := &models.Transaction{
		UserID:      userID,
		CategoryID:  categoryID,
		Type:        transactionType,
		Amount:      amount,
		Description: description,
		Date:        date,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if filter.Month != nil && filter.Year == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month filter requires a year")
	}
	if filter.Month != nil {
		if err := validatePeriod(*filter.Month, *filter.Year); err != nil {
			return nil, err
		}
	}

	page.Defaults()

	query := func() *gorm.DB {
		return applyTransactionFilters(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter)
	}

	var totalItems int64
	if err := query().Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := query().
		Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// periodRange returns the half-open [from, to) range covered by a month of a
// year, or by the whole year when month is nil.
func periodRange(month *int, year int) (time.Time, time.Time) {
	if month == nil {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0)
	}
	from := time.Date(year, time.Month(*month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.Year != nil {
		from, to := periodRange(f.Month, *f.Year)
		q = q.Where("date >= ? AND date < ?", from, to)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	return findOwned[models.Transaction](s.db, userID, transactionID, ownedByUser, apperrors.ErrTransactionNotFound, false)
}

// DeleteTransaction deletes one of the user's transactions. Category
// spending follows automatically since it is derived.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
