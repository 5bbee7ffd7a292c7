package store

import (
	"database/sql"
	"testing"

	"github.com/hollisdean/homequest/internal/database"
)

// setupTestDB opens a migrated in-memory database with the seeded task list
// removed, so each test builds exactly the fixture it needs.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM tasks`); err != nil {
		t.Fatalf("clear seed tasks: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
