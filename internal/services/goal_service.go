package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/ledger"
	"kopilka/internal/models"
)

const (
	minGoalPriority = 1
	maxGoalPriority = 3
)

// goalService handles savings goal business logic.
type goalService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db, now: time.Now}
}

// CreateGoal creates an active goal. A zero priority defaults to 1.
func (s *goalService) CreateGoal(userID, name string, target decimal.Decimal, priority int, deadline *time.Time, imageURL string) (*models.Goal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
	}
	if !target.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be positive")
	}
	if err := ledger.CheckMoney("target amount", target); err != nil {
		return nil, err
	}
	if priority == 0 {
		priority = minGoalPriority
	}
	if priority < minGoalPriority || priority > maxGoalPriority {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "priority must be between 1 and 3")
	}

	goal := &models.Goal{
		UserID:        userID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: decimal.Zero,
		ImageURL:      imageURL,
		Priority:      priority,
		Deadline:      deadline,
		Status:        models.GoalStatusActive,
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return goal, nil
}

// GetUserGoals lists the user's goals with the given status, most important
// first, each with its contribution history and display percentage.
func (s *goalService) GetUserGoals(userID string, status models.GoalStatus) ([]models.Goal, error) {
	if status == "" {
		status = models.GoalStatusActive
	}
	if status != models.GoalStatusActive && status != models.GoalStatusCompleted {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be ACTIVE or COMPLETED")
	}

	var goals []models.Goal
	if err := s.db.
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("date DESC, id DESC")
		}).
		Where("user_id = ? AND status = ?", userID, status).
		Order("priority ASC, created_at ASC").
		Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range goals {
		goals[i].Percentage = ledger.DisplayPercentage(goals[i].CurrentAmount, goals[i].TargetAmount)
	}
	return goals, nil
}

// GetGoalByID retrieves one of the user's goals with its history.
func (s *goalService) GetGoalByID(userID, goalID string) (*models.Goal, error) {
	goal, err := findOwned[models.Goal](s.db, userID, goalID, ownedByUser, apperrors.ErrGoalNotFound, false)
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("goal_id = ?", goal.ID).Order("date DESC, id DESC").Find(&goal.Transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	goal.Percentage = ledger.DisplayPercentage(goal.CurrentAmount, goal.TargetAmount)

	return goal, nil
}

// Contribute adds a positive amount to a goal or withdraws a negative one.
// The history entry, the goal update and any milestone notifications are
// written in one database transaction with the goal row locked. Every
// milestone crossed is reported; a notification row is stored only once.
func (s *goalService) Contribute(userID, goalID string, amount decimal.Decimal, source models.GoalSource, note string) (*ContributionResult, error) {
	if amount.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be zero")
	}
	if source == "" {
		source = models.GoalSourceManual
	}
	switch source {
	case models.GoalSourceManual, models.GoalSourceAuto, models.GoalSourceFromSavings:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported goal source")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = ledger.ContributionNote(amount)
	}

	result := &ContributionResult{Milestones: []int{}, Notified: []int{}}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := findOwned[models.Goal](tx, userID, goalID, ownedByUser, apperrors.ErrGoalNotFound, true)
		if err != nil {
			return err
		}

		now := s.now()
		crossed, err := ledger.ApplyContribution(goal, amount, now)
		if err != nil {
			return err
		}

		entry := &models.GoalTransaction{
			GoalID: goal.ID,
			Amount: amount,
			Source: source,
			Note:   note,
			Date:   now.UTC(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(goal).Updates(map[string]interface{}{
			"current_amount": goal.CurrentAmount,
			"status":         goal.Status,
			"completed_at":   goal.CompletedAt,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for _, m := range crossed {
			result.Milestones = append(result.Milestones, m)

			notification := &models.GoalNotification{GoalID: goal.ID, Milestone: m}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(notification)
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
			}
			if res.RowsAffected > 0 {
				result.Notified = append(result.Notified, m)
			}
		}

		goal.Percentage = ledger.DisplayPercentage(goal.CurrentAmount, goal.TargetAmount)
		result.Goal = goal
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteGoal deletes a goal together with its history and notifications.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		goal, err := findOwned[models.Goal](tx, userID, goalID, ownedByUser, apperrors.ErrGoalNotFound, true)
		if err != nil {
			return err
		}

		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.GoalTransaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.GoalNotification{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetGoalNotifications lists the milestones a goal has reached, lowest first.
func (s *goalService) GetGoalNotifications(userID, goalID string) ([]models.GoalNotification, error) {
	if _, err := findOwned[models.Goal](s.db, userID, goalID, ownedByUser, apperrors.ErrGoalNotFound, false); err != nil {
		return nil, err
	}

	notifications := []models.GoalNotification{}
	if err := s.db.Where("goal_id = ?", goalID).Order("milestone ASC").Find(&notifications).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return notifications, nil
}
