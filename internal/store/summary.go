package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hollisdean/homequest/internal/model"
)

type SummaryStore struct {
	db DBTX
}

func NewSummaryStore(db DBTX) *SummaryStore {
	return &SummaryStore{db: db}
}

func scanSummary(scanner interface{ Scan(...any) error }) (*model.WeekSummary, error) {
	var w model.WeekSummary
	var weekStart, payout string
	var required int

	err := scanner.Scan(&w.ID, &w.ChildID, &weekStart, &w.TotalPoints, &required, &payout, &w.CreatedAt)
	if err != nil {
		return nil, err
	}

	if w.WeekStartDate, err = parseDate(weekStart); err != nil {
		return nil, err
	}
	if w.PayoutAmount, err = decimal.NewFromString(payout); err != nil {
		return nil, fmt.Errorf("parse payout amount %q: %w", payout, err)
	}
	w.RequiredTasksCompleted = required != 0
	return &w, nil
}

const summaryCols = `id, child_id, week_start_date, total_points, required_tasks_completed, payout_amount, created_at`

func (s *SummaryStore) Create(childID int64, weekStart time.Time, totalPoints int, requiredCompleted bool, payout decimal.Decimal) (*model.WeekSummary, error) {
	result, err := s.db.Exec(
		`INSERT INTO week_summaries (child_id, week_start_date, total_points, required_tasks_completed, payout_amount) VALUES (?, ?, ?, ?, ?)`,
		childID, formatDate(weekStart), totalPoints, boolToInt(requiredCompleted), payout.StringFixed(2),
	)
	if err != nil {
		return nil, fmt.Errorf("insert week summary: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+summaryCols+` FROM week_summaries WHERE id = ?`, id)
	return scanSummary(row)
}

// GetByChildWeek returns the summary for a child and week start, or nil if
// the week has not been closed for that child.
func (s *SummaryStore) GetByChildWeek(childID int64, weekStart time.Time) (*model.WeekSummary, error) {
	row := s.db.QueryRow(
		`SELECT `+summaryCols+` FROM week_summaries WHERE child_id = ? AND week_start_date = ?`,
		childID, formatDate(weekStart),
	)
	w, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get week summary: %w", err)
	}
	return w, nil
}

func (s *SummaryStore) ListByChild(childID int64) ([]model.WeekSummary, error) {
	rows, err := s.db.Query(
		`SELECT `+summaryCols+` FROM week_summaries WHERE child_id = ? ORDER BY week_start_date DESC`,
		childID,
	)
	if err != nil {
		return nil, fmt.Errorf("list week summaries: %w", err)
	}
	defer rows.Close()

	var summaries []model.WeekSummary
	for rows.Next() {
		w, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan week summary: %w", err)
		}
		summaries = append(summaries, *w)
	}
	return summaries, rows.Err()
}
