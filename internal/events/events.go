// Package events publishes domain events to interested consumers.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// MilestoneReached is emitted once per goal and milestone percentage.
type MilestoneReached struct {
	UserID     string    `json:"user_id"`
	GoalID     string    `json:"goal_id"`
	GoalName   string    `json:"goal_name"`
	Milestone  int       `json:"milestone"`
	Completed  bool      `json:"completed"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers milestone events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishMilestone(ctx context.Context, event MilestoneReached) error
	Close() error
}

func (e MilestoneReached) encode() ([]byte, error) {
	return json.Marshal(e)
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

// PublishMilestone implements Publisher.
func (Nop) PublishMilestone(context.Context, MilestoneReached) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }
