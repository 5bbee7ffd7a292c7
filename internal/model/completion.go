package model

import "time"

// TaskCompletion records that one child did one task on one calendar date.
// Date is the day the completion counts toward; Timestamp is the clock time
// it was recorded, which can differ (backfilled completions).
type TaskCompletion struct {
	ID        int64     `json:"id"`
	ChildID   int64     `json:"child_id"`
	TaskID    int64     `json:"task_id"`
	Timestamp time.Time `json:"timestamp"`
	Date      time.Time `json:"date"`
	Approved  bool      `json:"approved"`
}
