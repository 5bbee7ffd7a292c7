package model

import "time"

type TaskCategory string

const (
	CategoryDaily     TaskCategory = "DAILY"
	CategoryBehaviour TaskCategory = "BEHAVIOUR"
	CategoryWeekly    TaskCategory = "WEEKLY"
)

type Task struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Points      int          `json:"points"`
	Category    TaskCategory `json:"category"`
	IsRequired  bool         `json:"is_required"`
	Streakable  bool         `json:"streakable"`
	ActiveDays  []int        `json:"active_days"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsActiveOn reports whether the task is active on the given weekday
// (0=Monday, 6=Sunday). A nil or empty ActiveDays means every day.
func (t Task) IsActiveOn(weekday int) bool {
	if len(t.ActiveDays) == 0 {
		return true
	}
	for _, d := range t.ActiveDays {
		if d == weekday {
			return true
		}
	}
	return false
}
