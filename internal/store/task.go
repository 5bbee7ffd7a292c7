package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hollisdean/homequest/internal/model"
)

type TaskStore struct {
	db DBTX
}

func NewTaskStore(db DBTX) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var isRequired, streakable int
	var activeDays sql.NullString

	err := scanner.Scan(
		&t.ID, &t.Name, &t.Description, &t.Points, &t.Category,
		&isRequired, &streakable, &activeDays, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.IsRequired = isRequired != 0
	t.Streakable = streakable != 0

	if activeDays.Valid && activeDays.String != "" {
		if err := json.Unmarshal([]byte(activeDays.String), &t.ActiveDays); err != nil {
			return nil, fmt.Errorf("decode active days: %w", err)
		}
	}
	return &t, nil
}

const taskCols = `id, name, description, points, category, is_required, streakable, active_days, created_at, updated_at`

func encodeActiveDays(days []int) (sql.NullString, error) {
	if len(days) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(days)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode active days: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func (s *TaskStore) Create(name, description string, points int, category model.TaskCategory, isRequired, streakable bool, activeDays []int) (*model.Task, error) {
	days, err := encodeActiveDays(activeDays)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (name, description, points, category, is_required, streakable, active_days) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, description, points, string(category), boolToInt(isRequired), boolToInt(streakable), days,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY category ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListRequired returns required tasks, optionally narrowed to the given
// categories. With no categories it returns every required task.
func (s *TaskStore) ListRequired(categories ...model.TaskCategory) ([]model.Task, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE is_required = 1`
	var args []any
	if len(categories) > 0 {
		placeholders := make([]string, len(categories))
		for i, c := range categories {
			placeholders[i] = "?"
			args = append(args, string(c))
		}
		query += ` AND category IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list required tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Update(id int64, name, description string, points int, category model.TaskCategory, isRequired, streakable bool, activeDays []int) (*model.Task, error) {
	days, err := encodeActiveDays(activeDays)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE tasks SET name = ?, description = ?, points = ?, category = ?, is_required = ?, streakable = ?, active_days = ?, updated_at = ? WHERE id = ?`,
		name, description, points, string(category), boolToInt(isRequired), boolToInt(streakable), days, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
