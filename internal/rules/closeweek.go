package rules

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// CloseReport is one child's entry in a week-close run.
type CloseReport struct {
	ChildID              int64           `json:"child_id"`
	ChildName            string          `json:"child_name"`
	TotalPoints          int             `json:"total_points"`
	AllRequiredCompleted bool            `json:"all_required_completed"`
	Payout               decimal.Decimal `json:"payout"`
	Skipped              bool            `json:"skipped"`
}

// CloseWeek snapshots the current week's outcome for every child. A child
// whose week is already closed is reported as skipped, which makes the
// operation safe to run from both a schedule and a button. This is the only
// writer of week summaries; it never updates an existing one.
func (e *Engine) CloseWeek(ctx context.Context) ([]CloseReport, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	st := newTxStores(tx)

	cfg, err := loadConfig(st.settings, e.logger)
	if err != nil {
		return nil, err
	}
	weekStart := WeekStart(DateOf(e.now().In(cfg.Location)))

	children, err := st.children.List()
	if err != nil {
		return nil, err
	}

	var reports []CloseReport
	for _, child := range children {
		existing, err := st.summaries.GetByChildWeek(child.ID, weekStart)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			reports = append(reports, CloseReport{
				ChildID:              child.ID,
				ChildName:            child.Name,
				TotalPoints:          existing.TotalPoints,
				AllRequiredCompleted: existing.RequiredTasksCompleted,
				Payout:               existing.PayoutAmount,
				Skipped:              true,
			})
			continue
		}

		result, err := weeklyPayout(st, cfg, child.ID, weekStart)
		if err != nil {
			return nil, err
		}

		if _, err := st.summaries.Create(child.ID, weekStart, result.TotalPoints, result.AllRequiredCompleted, result.Payout); err != nil {
			return nil, err
		}

		reports = append(reports, CloseReport{
			ChildID:              child.ID,
			ChildName:            child.Name,
			TotalPoints:          result.TotalPoints,
			AllRequiredCompleted: result.AllRequiredCompleted,
			Payout:               result.Payout,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.logger.Info("week closed", "week_start", weekStart.Format("2006-01-02"), "children", len(reports))
	return reports, nil
}

// ResetReport is one child's entry in a week-reset run.
type ResetReport struct {
	ChildName    string `json:"child_name"`
	XPRemoved    int    `json:"xp_removed"`
	NewLevel     int    `json:"new_level"`
	LevelChanged bool   `json:"level_changed"`
}

// ResetWeek deletes every completion in the current week and reverses its
// XP and level effects for all children. Streak state is cleared
// unconditionally — coarser than single-completion reversal, by the nature
// of wiping the week.
func (e *Engine) ResetWeek(ctx context.Context) ([]ResetReport, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	st := newTxStores(tx)

	cfg, err := loadConfig(st.settings, e.logger)
	if err != nil {
		return nil, err
	}
	weekStart := WeekStart(DateOf(e.now().In(cfg.Location)))

	children, err := st.children.List()
	if err != nil {
		return nil, err
	}

	var reports []ResetReport
	for i := range children {
		child := &children[i]

		removed, err := st.completions.SumPointsSince(child.ID, weekStart)
		if err != nil {
			return nil, err
		}

		oldLevel := child.Level
		if err := setXP(st, child, child.XP-removed); err != nil {
			return nil, err
		}

		child.StreakCount = 0
		child.LastCompletionDate = nil
		if err := st.children.UpdateStreak(child.ID, 0, nil); err != nil {
			return nil, err
		}

		reports = append(reports, ResetReport{
			ChildName:    child.Name,
			XPRemoved:    removed,
			NewLevel:     child.Level,
			LevelChanged: child.Level != oldLevel,
		})
	}

	if err := st.completions.DeleteSince(weekStart); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.logger.Info("week reset", "week_start", weekStart.Format("2006-01-02"), "children", len(reports))
	return reports, nil
}
