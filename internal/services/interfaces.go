package services

import (
	"time"

	"github.com/shopspring/decimal"

	"kopilka/internal/models"
	"kopilka/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name, currency string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// BudgetCategoryInput describes one category of a budget being created.
type BudgetCategoryInput struct {
	Name         string
	Icon         string
	Color        string
	BudgetAmount decimal.Decimal
}

// BudgetServicer defines the contract for monthly budget business logic.
type BudgetServicer interface {
	// GetBudget returns nil without an error when the period has no budget.
	GetBudget(userID string, month, year int) (*models.Budget, error)
	CreateBudget(userID string, month, year int, total decimal.Decimal, categories []BudgetCategoryInput) (*models.Budget, error)
	UpdateBudgetTotal(userID, budgetID string, total decimal.Decimal) (*models.Budget, error)
}

// CategoryUpdate carries the optional fields of a category update. Spent is
// the desired spending total, reached by writing a correcting transaction.
type CategoryUpdate struct {
	BudgetAmount *decimal.Decimal
	Spent        *decimal.Decimal
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	AddCategory(userID, budgetID, name, icon, color string, budgetAmount decimal.Decimal) (*models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, update CategoryUpdate) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
// Month filters only apply together with Year.
type TransactionFilter struct {
	Month      *int
	Year       *int
	Type       *models.TransactionType
	CategoryID *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, categoryID *string, transactionType models.TransactionType, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// ContributionResult is the outcome of a goal contribution. Milestones lists
// every milestone crossed by this call; Notified is the subset whose
// notification row did not exist yet.
type ContributionResult struct {
	Goal       *models.Goal `json:"goal"`
	Milestones []int        `json:"milestones"`
	Notified   []int        `json:"-"`
}

// GoalServicer defines the contract for savings goal business logic.
type GoalServicer interface {
	CreateGoal(userID, name string, target decimal.Decimal, priority int, deadline *time.Time, imageURL string) (*models.Goal, error)
	GetUserGoals(userID string, status models.GoalStatus) ([]models.Goal, error)
	GetGoalByID(userID, goalID string) (*models.Goal, error)
	Contribute(userID, goalID string, amount decimal.Decimal, source models.GoalSource, note string) (*ContributionResult, error)
	DeleteGoal(userID, goalID string) error
	GetGoalNotifications(userID, goalID string) ([]models.GoalNotification, error)
}

// SavingsServicer defines the contract for savings balance business logic.
type SavingsServicer interface {
	GetOrCreateSavings(userID, currency string, initialAmount decimal.Decimal) (*models.Savings, error)
	GetUserSavings(userID string) ([]models.Savings, error)
	UpdateSavings(userID, savingsID string, amount decimal.Decimal, op models.SavingsOperation, description string) (*models.Savings, error)
	GetSavingsTransactions(userID, savingsID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsTransaction], error)
}

// Dashboard is the one-call overview of a user's month.
type Dashboard struct {
	Month   int              `json:"month"`
	Year    int              `json:"year"`
	Budget  *models.Budget   `json:"budget"`
	Goals   []models.Goal    `json:"goals"`
	Savings []models.Savings `json:"savings"`
}

// DashboardServicer defines the contract for the overview screen.
type DashboardServicer interface {
	GetDashboard(userID string, month, year int) (*Dashboard, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID string, action models.AuditAction, resource models.AuditResource, resourceID, ipAddress string, changes map[string]interface{})
}
