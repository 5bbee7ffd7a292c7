package model

import "time"

type Badge struct {
	ID          int64     `json:"id"`
	ChildID     int64     `json:"child_id"`
	Name        string    `json:"name"`
	Emoji       string    `json:"emoji"`
	Description string    `json:"description"`
	EarnedDate  time.Time `json:"earned_date"`
}
