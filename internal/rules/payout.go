package rules

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PayoutResult is a week's outcome for one child.
type PayoutResult struct {
	TotalPoints          int             `json:"total_points"`
	AllRequiredCompleted bool            `json:"all_required_completed"`
	Payout               decimal.Decimal `json:"payout"`
}

// weeklyPayout computes the payout for the week starting at weekStart
// (a Monday; the week spans weekStart through weekStart+6 inclusive).
//
// A week with every required task completed on every day it was active pays
// the flat full amount. Otherwise the highest threshold whose min_points the
// week's total reaches pays its amount; no threshold means zero.
//
// The per-day check compares completion counts against the count of active
// required tasks rather than matching task identities; the one-completion-
// per-(child, task, date) invariant is what makes that sound.
func weeklyPayout(st txStores, cfg Config, childID int64, weekStart time.Time) (*PayoutResult, error) {
	weekEnd := weekStart.AddDate(0, 0, 6)

	total, err := st.completions.SumApprovedPointsInRange(childID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	required, err := st.tasks.ListRequired()
	if err != nil {
		return nil, err
	}

	allCompleted := true
	for offset := 0; offset < 7; offset++ {
		day := weekStart.AddDate(0, 0, offset)
		weekday := WeekdayIndex(day)

		activeRequired := 0
		for _, t := range required {
			if t.IsActiveOn(weekday) {
				activeRequired++
			}
		}
		if activeRequired == 0 {
			continue
		}

		completed, err := st.completions.CountApprovedRequiredOnDate(childID, day)
		if err != nil {
			return nil, err
		}
		if completed < activeRequired {
			allCompleted = false
			break
		}
	}

	payout := decimal.Zero
	if allCompleted {
		payout = cfg.FullPayoutAmount
	} else {
		thresholds := make([]ThresholdRule, len(cfg.Thresholds))
		copy(thresholds, cfg.Thresholds)
		sort.Slice(thresholds, func(i, j int) bool {
			return thresholds[i].MinPoints > thresholds[j].MinPoints
		})
		for _, rule := range thresholds {
			if total >= rule.MinPoints {
				payout = rule.Amount
				break
			}
		}
	}

	return &PayoutResult{
		TotalPoints:          total,
		AllRequiredCompleted: allCompleted,
		Payout:               payout,
	}, nil
}

// CalculateWeeklyPayout computes, without persisting, the payout for one
// child for the week containing weekStart. weekStart is normalized to its
// Monday.
func (e *Engine) CalculateWeeklyPayout(ctx context.Context, childID int64, weekStart time.Time) (*PayoutResult, error) {
	weekStart = WeekStart(weekStart)

	st := newTxStores(e.db)

	cfg, err := loadConfig(st.settings, e.logger)
	if err != nil {
		return nil, err
	}

	child, err := st.children.GetByID(childID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrNotFound
	}

	return weeklyPayout(st, cfg, childID, weekStart)
}
