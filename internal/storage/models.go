package storage

import "time"

// Plan lifecycle statuses as persisted in plan_history.
const (
	PlanStatusPending   = "pending"
	PlanStatusApplied   = "applied"
	PlanStatusDiscarded = "discarded"
)

// PlanRecord captures one governed change proposal and its outcome.
type PlanRecord struct {
	PlanID      string
	PolicyID    string
	Summary     string
	Status      string
	Actor       string
	Branch      string
	PullRequest string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
