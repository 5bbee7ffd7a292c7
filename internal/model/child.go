package model

import "time"

type Child struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	AvatarEmoji        string     `json:"avatar_emoji"`
	Color              string     `json:"color"`
	XP                 int        `json:"xp"`
	Level              int        `json:"level"`
	StreakCount        int        `json:"streak_count"`
	LastCompletionDate *time.Time `json:"last_completion_date"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
