package store

import (
	"fmt"
	"time"

	"github.com/hollisdean/homequest/internal/model"
)

type BadgeStore struct {
	db DBTX
}

func NewBadgeStore(db DBTX) *BadgeStore {
	return &BadgeStore{db: db}
}

func scanBadge(scanner interface{ Scan(...any) error }) (*model.Badge, error) {
	var b model.Badge
	var earned string

	err := scanner.Scan(&b.ID, &b.ChildID, &b.Name, &b.Emoji, &b.Description, &earned)
	if err != nil {
		return nil, err
	}

	b.EarnedDate, err = parseDate(earned)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const badgeCols = `id, child_id, name, emoji, description, earned_date`

func (s *BadgeStore) Create(childID int64, name, emoji, description string, earnedDate time.Time) (*model.Badge, error) {
	result, err := s.db.Exec(
		`INSERT INTO badges (child_id, name, emoji, description, earned_date) VALUES (?, ?, ?, ?, ?)`,
		childID, name, emoji, description, formatDate(earnedDate),
	)
	if err != nil {
		return nil, fmt.Errorf("insert badge: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+badgeCols+` FROM badges WHERE id = ?`, id)
	return scanBadge(row)
}

// Exists reports whether the child already holds a badge with this name,
// on any date.
func (s *BadgeStore) Exists(childID int64, name string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM badges WHERE child_id = ? AND name = ?`,
		childID, name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check badge exists: %w", err)
	}
	return count > 0, nil
}

// ExistsOnDate reports whether the child holds a badge with this name earned
// on the given date. Used by date-scoped badges.
func (s *BadgeStore) ExistsOnDate(childID int64, name string, date time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM badges WHERE child_id = ? AND name = ? AND earned_date = ?`,
		childID, name, formatDate(date),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check badge exists on date: %w", err)
	}
	return count > 0, nil
}

func (s *BadgeStore) ListByChild(childID int64) ([]model.Badge, error) {
	rows, err := s.db.Query(
		`SELECT `+badgeCols+` FROM badges WHERE child_id = ? ORDER BY earned_date DESC, id DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []model.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, *b)
	}
	return badges, rows.Err()
}
