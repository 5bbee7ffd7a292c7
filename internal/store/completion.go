package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hollisdean/homequest/internal/model"
)

type CompletionStore struct {
	db DBTX
}

func NewCompletionStore(db DBTX) *CompletionStore {
	return &CompletionStore{db: db}
}

func scanCompletion(scanner interface{ Scan(...any) error }) (*model.TaskCompletion, error) {
	var c model.TaskCompletion
	var date string
	var approved int

	err := scanner.Scan(&c.ID, &c.ChildID, &c.TaskID, &c.Timestamp, &date, &approved)
	if err != nil {
		return nil, err
	}

	c.Date, err = parseDate(date)
	if err != nil {
		return nil, err
	}
	c.Approved = approved != 0
	return &c, nil
}

const completionCols = `id, child_id, task_id, timestamp, date, approved`

func (s *CompletionStore) Create(childID, taskID int64, date, timestamp time.Time) (*model.TaskCompletion, error) {
	result, err := s.db.Exec(
		`INSERT INTO task_completions (child_id, task_id, timestamp, date) VALUES (?, ?, ?, ?)`,
		childID, taskID, timestamp.UTC(), formatDate(date),
	)
	if err != nil {
		return nil, fmt.Errorf("insert completion: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CompletionStore) GetByID(id int64) (*model.TaskCompletion, error) {
	row := s.db.QueryRow(`SELECT `+completionCols+` FROM task_completions WHERE id = ?`, id)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	return c, nil
}

// Exists reports whether a completion already exists for the given child,
// task and date, approved or not. This is the uniqueness pre-check for
// recording.
func (s *CompletionStore) Exists(childID, taskID int64, date time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM task_completions WHERE child_id = ? AND task_id = ? AND date = ?`,
		childID, taskID, formatDate(date),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check completion exists: %w", err)
	}
	return count > 0, nil
}

func (s *CompletionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM task_completions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	return nil
}

// CountApprovedRequiredOnDate counts the child's approved completions of
// required tasks on a date, optionally narrowed to task categories.
func (s *CompletionStore) CountApprovedRequiredOnDate(childID int64, date time.Time, categories ...model.TaskCategory) (int, error) {
	query := `SELECT COUNT(*) FROM task_completions c
		JOIN tasks t ON t.id = c.task_id
		WHERE c.child_id = ? AND c.date = ? AND c.approved = 1 AND t.is_required = 1`
	args := []any{childID, formatDate(date)}
	if len(categories) > 0 {
		placeholders := make([]string, len(categories))
		for i, cat := range categories {
			placeholders[i] = "?"
			args = append(args, string(cat))
		}
		query += ` AND t.category IN (` + strings.Join(placeholders, ", ") + `)`
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count required completions: %w", err)
	}
	return count, nil
}

// CountApprovedBefore counts the child's approved completions on a date
// whose recorded timestamp is before the cutoff.
func (s *CompletionStore) CountApprovedBefore(childID int64, date time.Time, cutoff time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM task_completions WHERE child_id = ? AND date = ? AND approved = 1 AND timestamp < ?`,
		childID, formatDate(date), cutoff.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count morning completions: %w", err)
	}
	return count, nil
}

// CountApprovedByTaskName counts the child's approved completions of tasks
// with the given name, across all time.
func (s *CompletionStore) CountApprovedByTaskName(childID int64, taskName string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM task_completions c
		 JOIN tasks t ON t.id = c.task_id
		 WHERE c.child_id = ? AND c.approved = 1 AND t.name = ?`,
		childID, taskName,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completions by task name: %w", err)
	}
	return count, nil
}

// SumApprovedPointsInRange sums the task points of the child's approved
// completions with dates in [start, end] inclusive.
func (s *CompletionStore) SumApprovedPointsInRange(childID int64, start, end time.Time) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(t.points), 0) FROM task_completions c
		 JOIN tasks t ON t.id = c.task_id
		 WHERE c.child_id = ? AND c.approved = 1 AND c.date >= ? AND c.date <= ?`,
		childID, formatDate(start), formatDate(end),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum points in range: %w", err)
	}
	return total, nil
}

// SumPointsSince sums task points of all the child's completions dated on or
// after start, approved or not. Week reset reverses everything it deletes.
func (s *CompletionStore) SumPointsSince(childID int64, start time.Time) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(t.points), 0) FROM task_completions c
		 JOIN tasks t ON t.id = c.task_id
		 WHERE c.child_id = ? AND c.date >= ?`,
		childID, formatDate(start),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum points since: %w", err)
	}
	return total, nil
}

// DeleteSince removes every completion dated on or after start, for all
// children.
func (s *CompletionStore) DeleteSince(start time.Time) error {
	_, err := s.db.Exec(`DELETE FROM task_completions WHERE date >= ?`, formatDate(start))
	if err != nil {
		return fmt.Errorf("delete completions since: %w", err)
	}
	return nil
}

// ListApprovedTaskIDsOnDate returns the ids of tasks the child has an
// approved completion for on the given date.
func (s *CompletionStore) ListApprovedTaskIDsOnDate(childID int64, date time.Time) (map[int64]bool, error) {
	rows, err := s.db.Query(
		`SELECT task_id FROM task_completions WHERE child_id = ? AND date = ? AND approved = 1`,
		childID, formatDate(date),
	)
	if err != nil {
		return nil, fmt.Errorf("list completed task ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// LatestApprovedExcept returns the child's most recent approved completion
// by date, skipping the given completion id. Used when reversing a
// completion to find the date the streak machine should resume from.
func (s *CompletionStore) LatestApprovedExcept(childID, exceptID int64) (*model.TaskCompletion, error) {
	row := s.db.QueryRow(
		`SELECT `+completionCols+` FROM task_completions
		 WHERE child_id = ? AND id != ? AND approved = 1
		 ORDER BY date DESC, timestamp DESC LIMIT 1`,
		childID, exceptID,
	)
	c, err := scanCompletion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completion: %w", err)
	}
	return c, nil
}

// CompletionDetail is a completion joined with its child and task for the
// activity feed.
type CompletionDetail struct {
	ID          int64     `json:"id"`
	ChildID     int64     `json:"child_id"`
	ChildName   string    `json:"child_name"`
	ChildAvatar string    `json:"child_avatar"`
	TaskName    string    `json:"task_name"`
	Points      int       `json:"points"`
	Date        time.Time `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

// ListRecentDetails returns approved completions dated on or after since,
// newest first, joined with child and task info.
func (s *CompletionStore) ListRecentDetails(since time.Time) ([]CompletionDetail, error) {
	rows, err := s.db.Query(
		`SELECT c.id, c.child_id, ch.name, ch.avatar_emoji, t.name, t.points, c.date, c.timestamp
		 FROM task_completions c
		 JOIN children ch ON ch.id = c.child_id
		 JOIN tasks t ON t.id = c.task_id
		 WHERE c.date >= ? AND c.approved = 1
		 ORDER BY c.timestamp DESC`,
		formatDate(since),
	)
	if err != nil {
		return nil, fmt.Errorf("list recent completions: %w", err)
	}
	defer rows.Close()

	var details []CompletionDetail
	for rows.Next() {
		var d CompletionDetail
		var date string
		if err := rows.Scan(&d.ID, &d.ChildID, &d.ChildName, &d.ChildAvatar, &d.TaskName, &d.Points, &date, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("scan completion detail: %w", err)
		}
		if d.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
