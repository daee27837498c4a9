package services

import (
	"golang.org/x/sync/errgroup"

	"kopilka/internal/models"
)

// dashboardService assembles the overview from the other services.
type dashboardService struct {
	budgets BudgetServicer
	goals   GoalServicer
	savings SavingsServicer
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(budgets BudgetServicer, goals GoalServicer, savings SavingsServicer) DashboardServicer {
	return &dashboardService{budgets: budgets, goals: goals, savings: savings}
}

// GetDashboard loads the period's budget, active goals and savings
// concurrently. The first failure cancels the result.
func (s *dashboardService) GetDashboard(userID string, month, year int) (*Dashboard, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	dashboard := &Dashboard{Month: month, Year: year}

	var g errgroup.Group
	g.Go(func() error {
		budget, err := s.budgets.GetBudget(userID, month, year)
		dashboard.Budget = budget
		return err
	})
	g.Go(func() error {
		goals, err := s.goals.GetUserGoals(userID, models.GoalStatusActive)
		dashboard.Goals = goals
		return err
	})
	g.Go(func() error {
		savings, err := s.savings.GetUserSavings(userID)
		dashboard.Savings = savings
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if dashboard.Goals == nil {
		dashboard.Goals = []models.Goal{}
	}
	return dashboard, nil
}
