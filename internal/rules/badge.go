package rules

import (
	"time"

	"github.com/hollisdean/homequest/internal/model"
)

// Badge names. The rule set is a closed, named list; new achievements are
// added as further independent checks with the same non-existence guard.
const (
	BadgeMorningHero = "Morning Hero"
	BadgeAllGreenDay = "All-Green Day"
	BadgeStreakStar  = "Streak Star"
	BadgeTidyMaster  = "Tidy Master"
)

const (
	morningCompletions = 3
	morningCutoffHour  = 9
	streakStarDays     = 5
	tidyMasterTask     = "Tidy Room"
	tidyMasterCount    = 10
)

// evaluateBadges runs the badge rules for one recorded completion and
// returns the badges newly awarded. Each rule checks non-existence before
// inserting, so re-running the evaluator never duplicates a badge. Earned
// badges are permanent; nothing here revokes.
func (e *Engine) evaluateBadges(st txStores, cfg Config, child *model.Child, task *model.Task, date time.Time) ([]model.Badge, error) {
	var earned []model.Badge

	award := func(name, emoji, description string) error {
		badge, err := st.badges.Create(child.ID, name, emoji, description, date)
		if err != nil {
			return err
		}
		earned = append(earned, *badge)
		return nil
	}

	// Morning Hero: three approved completions before 9 AM local time.
	// Only considered for completions recorded on the current date, so a
	// backfilled completion cannot win it retroactively.
	today := DateOf(e.now().In(cfg.Location))
	if SameDay(date, today) {
		cutoff := time.Date(date.Year(), date.Month(), date.Day(), morningCutoffHour, 0, 0, 0, cfg.Location)
		count, err := st.completions.CountApprovedBefore(child.ID, date, cutoff)
		if err != nil {
			return nil, err
		}
		if count >= morningCompletions {
			has, err := st.badges.Exists(child.ID, BadgeMorningHero)
			if err != nil {
				return nil, err
			}
			if !has {
				if err := award(BadgeMorningHero, "🥇", "Completed 3 tasks before 9 AM"); err != nil {
					return nil, err
				}
			}
		}
	}

	// All-Green Day: every required DAILY and WEEKLY task active today is
	// done. A day with no active required tasks never awards it.
	weekday := WeekdayIndex(date)
	required, err := st.tasks.ListRequired(model.CategoryDaily, model.CategoryWeekly)
	if err != nil {
		return nil, err
	}
	activeRequired := 0
	for _, t := range required {
		if t.IsActiveOn(weekday) {
			activeRequired++
		}
	}
	if activeRequired > 0 {
		completed, err := st.completions.CountApprovedRequiredOnDate(child.ID, date, model.CategoryDaily, model.CategoryWeekly)
		if err != nil {
			return nil, err
		}
		if completed >= activeRequired {
			has, err := st.badges.ExistsOnDate(child.ID, BadgeAllGreenDay, date)
			if err != nil {
				return nil, err
			}
			if !has {
				if err := award(BadgeAllGreenDay, "💯", "Completed all required tasks for the day"); err != nil {
					return nil, err
				}
			}
		}
	}

	// Streak Star: first time the streak reaches five days.
	if child.StreakCount >= streakStarDays {
		has, err := st.badges.Exists(child.ID, BadgeStreakStar)
		if err != nil {
			return nil, err
		}
		if !has {
			if err := award(BadgeStreakStar, "🌟", "Maintained a 5-day streak"); err != nil {
				return nil, err
			}
		}
	}

	// Tidy Master: ten cumulative completions of the Tidy Room task.
	if task.Name == tidyMasterTask {
		count, err := st.completions.CountApprovedByTaskName(child.ID, tidyMasterTask)
		if err != nil {
			return nil, err
		}
		if count >= tidyMasterCount {
			has, err := st.badges.Exists(child.ID, BadgeTidyMaster)
			if err != nil {
				return nil, err
			}
			if !has {
				if err := award(BadgeTidyMaster, "🧹", "Completed 'Tidy Room' 10 times"); err != nil {
					return nil, err
				}
			}
		}
	}

	return earned, nil
}
