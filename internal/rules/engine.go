package rules

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hollisdean/homequest/internal/model"
	"github.com/hollisdean/homequest/internal/store"
)

// Engine applies the points, streak, badge and payout rules. Every mutating
// operation runs as a single transaction: either the whole pipeline commits
// (XP, level, streak, badges, completion row) or none of it does.
type Engine struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

func New(db *sql.DB, logger *slog.Logger) *Engine {
	return &Engine{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// txStores bundles entity stores bound to one transaction.
type txStores struct {
	children    *store.ChildStore
	tasks       *store.TaskStore
	completions *store.CompletionStore
	badges      *store.BadgeStore
	summaries   *store.SummaryStore
	settings    *store.SettingsStore
}

func newTxStores(db store.DBTX) txStores {
	return txStores{
		children:    store.NewChildStore(db),
		tasks:       store.NewTaskStore(db),
		completions: store.NewCompletionStore(db),
		badges:      store.NewBadgeStore(db),
		summaries:   store.NewSummaryStore(db),
		settings:    store.NewSettingsStore(db),
	}
}

// setXP is the only path that writes a child's XP. It floors at zero and
// recomputes the cached level so the two can never drift.
func setXP(st txStores, child *model.Child, xp int) error {
	if xp < 0 {
		xp = 0
	}
	child.XP = xp
	child.Level = Level(xp)
	return st.children.UpdateXP(child.ID, child.XP, child.Level)
}

// CompletionResult is the outcome of recording one task completion.
type CompletionResult struct {
	CompletionID int64         `json:"completion_id"`
	Praise       string        `json:"praise"`
	XPGained     int           `json:"xp_gained"`
	TotalXP      int           `json:"total_xp"`
	Level        int           `json:"level"`
	LevelUp      bool          `json:"level_up"`
	StreakCount  int           `json:"streak_count"`
	BadgesEarned []model.Badge `json:"badges_earned"`
}

// RecordCompletion records that a child completed a task on the given
// calendar date, then runs the pipeline: XP, level, streak, badges, in that
// order, inside one transaction. A zero date means today in the configured
// timezone.
func (e *Engine) RecordCompletion(ctx context.Context, childID, taskID int64, date time.Time) (*CompletionResult, error) {
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

	if date.IsZero() {
		date = DateOf(e.now().In(cfg.Location))
	} else {
		date = DateOf(date)
	}

	child, err := st.children.GetByID(childID)
	if err != nil {
		return nil, err
	}
	task, err := st.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if child == nil || task == nil {
		return nil, ErrNotFound
	}

	exists, err := st.completions.Exists(childID, taskID, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCompletion
	}

	completion, err := st.completions.Create(childID, taskID, date, e.now().UTC())
	if err != nil {
		return nil, err
	}

	oldLevel := child.Level
	if err := setXP(st, child, child.XP+task.Points); err != nil {
		return nil, err
	}

	if err := e.updateStreak(st, child, date); err != nil {
		return nil, err
	}

	earned, err := e.evaluateBadges(st, cfg, child, task, date)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.logger.Info("completion recorded",
		"child_id", child.ID, "task_id", task.ID, "date", date.Format("2006-01-02"),
		"xp_gained", task.Points, "streak", child.StreakCount, "badges", len(earned))

	return &CompletionResult{
		CompletionID: completion.ID,
		Praise:       randomPraise(),
		XPGained:     task.Points,
		TotalXP:      child.XP,
		Level:        child.Level,
		LevelUp:      child.Level > oldLevel,
		StreakCount:  child.StreakCount,
		BadgesEarned: earned,
	}, nil
}

// RemovalResult is the outcome of reversing one completion.
type RemovalResult struct {
	ChildName    string `json:"child_name"`
	NewLevel     int    `json:"new_level"`
	LevelChanged bool   `json:"level_changed"`
	XPRemoved    int    `json:"xp_removed"`
}

// RemoveCompletion reverses a recorded completion: the task's points come
// back off the child's XP (floored at zero), the level is recomputed, and
// for streakable required tasks the streak machine is re-run once from the
// most recent remaining completion date. That single-step recompute can
// under-count multi-day streaks after removing an earlier completion; see
// DESIGN.md. Badges are never revoked.
func (e *Engine) RemoveCompletion(ctx context.Context, completionID int64) (*RemovalResult, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	st := newTxStores(tx)

	completion, err := st.completions.GetByID(completionID)
	if err != nil {
		return nil, err
	}
	if completion == nil {
		return nil, ErrNotFound
	}

	child, err := st.children.GetByID(completion.ChildID)
	if err != nil {
		return nil, err
	}
	task, err := st.tasks.GetByID(completion.TaskID)
	if err != nil {
		return nil, err
	}
	if child == nil || task == nil {
		return nil, ErrNotFound
	}

	oldLevel := child.Level
	if err := setXP(st, child, child.XP-task.Points); err != nil {
		return nil, err
	}

	if task.Streakable && task.IsRequired {
		latest, err := st.completions.LatestApprovedExcept(child.ID, completion.ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			last := latest.Date
			child.LastCompletionDate = &last
			if err := st.children.UpdateStreak(child.ID, child.StreakCount, child.LastCompletionDate); err != nil {
				return nil, err
			}
			if err := e.updateStreak(st, child, latest.Date); err != nil {
				return nil, err
			}
		} else {
			child.StreakCount = 0
			child.LastCompletionDate = nil
			if err := st.children.UpdateStreak(child.ID, 0, nil); err != nil {
				return nil, err
			}
		}
	}

	if err := st.completions.Delete(completion.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	e.logger.Info("completion removed",
		"completion_id", completionID, "child_id", child.ID, "xp_removed", task.Points)

	return &RemovalResult{
		ChildName:    child.Name,
		NewLevel:     child.Level,
		LevelChanged: child.Level != oldLevel,
		XPRemoved:    task.Points,
	}, nil
}
