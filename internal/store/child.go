package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hollisdean/homequest/internal/model"
)

type ChildStore struct {
	db DBTX
}

func NewChildStore(db DBTX) *ChildStore {
	return &ChildStore{db: db}
}

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	var lastCompletion sql.NullString

	err := scanner.Scan(
		&c.ID, &c.Name, &c.AvatarEmoji, &c.Color, &c.XP, &c.Level,
		&c.StreakCount, &lastCompletion, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.LastCompletionDate, err = parseNullDate(lastCompletion)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const childCols = `id, name, avatar_emoji, color, xp, level, streak_count, last_completion_date, created_at, updated_at`

func (s *ChildStore) Create(name, avatarEmoji, color string) (*model.Child, error) {
	result, err := s.db.Exec(
		`INSERT INTO children (name, avatar_emoji, color) VALUES (?, ?, ?)`,
		name, avatarEmoji, color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) GetByID(id int64) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) List() ([]model.Child, error) {
	rows, err := s.db.Query(`SELECT ` + childCols + ` FROM children ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *ChildStore) NameExists(name string, excludeID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM children WHERE name = ? AND id != ?`,
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check child name: %w", err)
	}
	return count > 0, nil
}

func (s *ChildStore) Update(id int64, name, avatarEmoji, color string) (*model.Child, error) {
	_, err := s.db.Exec(
		`UPDATE children SET name = ?, avatar_emoji = ?, color = ?, updated_at = ? WHERE id = ?`,
		name, avatarEmoji, color, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(id)
}

// UpdateXP writes the XP value together with its derived level. Callers must
// compute the level from the XP they are writing; the two columns never
// change independently.
func (s *ChildStore) UpdateXP(id int64, xp, level int) error {
	_, err := s.db.Exec(
		`UPDATE children SET xp = ?, level = ?, updated_at = ? WHERE id = ?`,
		xp, level, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update child xp: %w", err)
	}
	return nil
}

// UpdateStreak writes the streak counter and last completion date. A nil
// date clears the column.
func (s *ChildStore) UpdateStreak(id int64, streakCount int, lastCompletion *time.Time) error {
	var last sql.NullString
	if lastCompletion != nil {
		last = sql.NullString{String: formatDate(*lastCompletion), Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE children SET streak_count = ?, last_completion_date = ?, updated_at = ? WHERE id = ?`,
		streakCount, last, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update child streak: %w", err)
	}
	return nil
}

func (s *ChildStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return nil
}
