package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GoalStatus represents the lifecycle state of a goal
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "ACTIVE"
	GoalStatusCompleted GoalStatus = "COMPLETED"
)

// GoalSource tags where a goal contribution came from
type GoalSource string

const (
	GoalSourceManual      GoalSource = "MANUAL"
	GoalSourceAuto        GoalSource = "AUTO"
	GoalSourceFromSavings GoalSource = "FROM_SAVINGS"
)

// Goal is a savings target. Status is COMPLETED exactly when
// CurrentAmount >= TargetAmount, and CompletedAt is set exactly then.
type Goal struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string          `gorm:"not null" json:"name"`
	TargetAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"current_amount"`
	ImageURL      string          `json:"image_url,omitempty"`
	Priority      int             `gorm:"not null;default:1" json:"priority"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	Status        GoalStatus      `gorm:"not null;default:'ACTIVE';index" json:"status"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`

	// Percentage is the display progress, filled at query time.
	Percentage int64 `gorm:"-" json:"percentage"`

	// Relationships
	Transactions  []GoalTransaction  `gorm:"foreignKey:GoalID" json:"transactions,omitempty"`
	Notifications []GoalNotification `gorm:"foreignKey:GoalID" json:"notifications,omitempty"`
}

// GoalTransaction is an append-only record of a contribution (positive
// amount) or withdrawal (negative amount).
type GoalTransaction struct {
	Base
	GoalID string          `gorm:"type:uuid;not null;index" json:"goal_id"`
	Amount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Source GoalSource      `gorm:"not null" json:"source"`
	Note   string          `json:"note,omitempty"`
	Date   time.Time       `gorm:"not null" json:"date"`
}

// GoalNotification marks that a milestone percentage was reached once.
type GoalNotification struct {
	Base
	GoalID    string `gorm:"type:uuid;not null;uniqueIndex:uq_goal_notifications_goal_milestone" json:"goal_id"`
	Milestone int    `gorm:"not null;uniqueIndex:uq_goal_notifications_goal_milestone" json:"milestone"`
}
