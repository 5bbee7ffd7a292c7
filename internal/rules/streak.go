package rules

import (
	"time"

	"github.com/hollisdean/homequest/internal/model"
)

// updateStreak advances the child's consecutive-day streak for a completion
// on the given date. The streak only reacts to required daily tasks: if no
// required daily task is active on that weekday, or the child has no
// qualifying approved completion that day, nothing changes.
//
// The tracker is deliberately incremental: it depends only on the stored
// last_completion_date, not the full history, so re-running it for the same
// day is a no-op and a missed day resets the count to 1.
func (e *Engine) updateStreak(st txStores, child *model.Child, date time.Time) error {
	weekday := WeekdayIndex(date)

	requiredDaily, err := st.tasks.ListRequired(model.CategoryDaily)
	if err != nil {
		return err
	}

	anyActive := false
	for _, t := range requiredDaily {
		if t.IsActiveOn(weekday) {
			anyActive = true
			break
		}
	}
	if !anyActive {
		return nil
	}

	completed, err := st.completions.CountApprovedRequiredOnDate(child.ID, date, model.CategoryDaily)
	if err != nil {
		return err
	}
	if completed == 0 {
		return nil
	}

	yesterday := date.AddDate(0, 0, -1)
	last := child.LastCompletionDate

	switch {
	case last == nil:
		child.StreakCount = 1
	case SameDay(*last, date):
		// Already counted today; idempotent re-entry.
	case SameDay(*last, yesterday):
		child.StreakCount++
	case last.Before(yesterday):
		// Gap in the streak.
		child.StreakCount = 1
	default:
		// A completion for a past date arrived after a later one was
		// already processed. Leave the streak alone rather than corrupt it.
		e.logger.Warn("out-of-order completion, streak unchanged",
			"child_id", child.ID,
			"completion_date", date.Format("2006-01-02"),
			"last_completion_date", last.Format("2006-01-02"))
		return nil
	}

	d := date
	child.LastCompletionDate = &d
	return st.children.UpdateStreak(child.ID, child.StreakCount, child.LastCompletionDate)
}
