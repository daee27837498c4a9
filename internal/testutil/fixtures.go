package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"kopilka/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Money parses a decimal literal and fails the test on bad input.
func Money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     "Test User",
		Currency: "BYN",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates a budget for the current month with a total of 1000.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string) *models.Budget {
	t.Helper()
	now := time.Now()
	return CreateTestBudgetForPeriod(t, db, userID, int(now.Month()), now.Year())
}

// CreateTestBudgetForPeriod creates a budget for the given month and year.
func CreateTestBudgetForPeriod(t *testing.T, db *gorm.DB, userID string, month, year int) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:      userID,
		Month:       month,
		Year:        year,
		TotalAmount: decimal.NewFromInt(1000),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestCategory creates a category with the given planned amount.
func CreateTestCategory(t *testing.T, db *gorm.DB, budgetID string, budgetAmount decimal.Decimal) *models.Category {
	t.Helper()

	category := &models.Category{
		BudgetID:     budgetID,
		Name:         fmt.Sprintf("Category %d", nextID()),
		Icon:         "cart",
		Color:        "#22c55e",
		BudgetAmount: budgetAmount,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction dated now. categoryID may be empty.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID string, txType models.TransactionType, amount decimal.Decimal) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: "Test transaction",
		Date:        time.Now().UTC(),
	}
	if categoryID != "" {
		tx.CategoryID = &categoryID
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestGoal creates an active goal with the given target.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, target decimal.Decimal) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Name:          fmt.Sprintf("Goal %d", nextID()),
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		Priority:      1,
		Status:        models.GoalStatusActive,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestSavings creates a savings balance in the given currency.
func CreateTestSavings(t *testing.T, db *gorm.DB, userID, currency string, amount decimal.Decimal) *models.Savings {
	t.Helper()

	savings := &models.Savings{
		UserID:   userID,
		Currency: currency,
		Amount:   amount,
	}
	if err := db.Create(savings).Error; err != nil {
		t.Fatalf("failed to create test savings: %v", err)
	}
	return savings
}
