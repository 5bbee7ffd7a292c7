package rules

import "errors"

var (
	// ErrNotFound is returned when a referenced child, task or completion
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateCompletion is returned when a completion already exists
	// for the same child, task and date.
	ErrDuplicateCompletion = errors.New("task already completed for this date")
)
