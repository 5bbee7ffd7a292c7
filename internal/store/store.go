package store

import (
	"database/sql"
	"fmt"
	"time"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx. Stores
// are built on it so the rules engine can run the same queries inside a
// transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// dateLayout is the storage format for calendar dates. Dates are date-only
// values: midnight UTC in Go, a bare YYYY-MM-DD string in SQLite so that
// range comparisons sort lexically.
const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
