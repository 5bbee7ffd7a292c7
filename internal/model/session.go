package model

import "time"

// ParentSession is a logged-in parent browser session, created after a
// successful PIN check.
type ParentSession struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
