package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeekSummary is an immutable snapshot of a child's outcome for one week.
// At most one summary exists per (child, week start); it is never updated.
type WeekSummary struct {
	ID                     int64           `json:"id"`
	ChildID                int64           `json:"child_id"`
	WeekStartDate          time.Time       `json:"week_start_date"`
	TotalPoints            int             `json:"total_points"`
	RequiredTasksCompleted bool            `json:"required_tasks_completed"`
	PayoutAmount           decimal.Decimal `json:"payout_amount"`
	CreatedAt              time.Time       `json:"created_at"`
}
