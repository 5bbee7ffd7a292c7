package rules

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hollisdean/homequest/internal/database"
	"github.com/hollisdean/homequest/internal/model"
	"github.com/hollisdean/homequest/internal/store"
)

// testNow is the fixed clock for engine tests: Friday 2026-08-28, 08:00 UTC.
var testNow = time.Date(2026, time.August, 28, 8, 0, 0, 0, time.UTC)

var testToday = Date(2026, time.August, 28)

func setupEngine(t *testing.T) (*Engine, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Drop the seeded task list so each test controls its own fixture.
	if _, err := db.Exec(`DELETE FROM tasks`); err != nil {
		t.Fatalf("clear seed tasks: %v", err)
	}

	settings := store.NewSettingsStore(db)
	for key, value := range map[string]string{
		store.KeyFullPayoutAmount: "3.00",
		store.KeyThresholdRules:   `[{"min_points":40,"amount":"2.00"},{"min_points":25,"amount":"1.00"}]`,
		store.KeyTimezone:         "UTC",
	} {
		if err := settings.Set(key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	e := New(db, slog.Default())
	e.now = func() time.Time { return testNow }
	return e, db
}

func mustCreateChild(t *testing.T, db *sql.DB, name string) *model.Child {
	t.Helper()
	child, err := store.NewChildStore(db).Create(name, "🦊", "#ff6b6b")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return child
}

func mustCreateTask(t *testing.T, db *sql.DB, name string, points int, category model.TaskCategory, required, streakable bool, activeDays []int) *model.Task {
	t.Helper()
	task, err := store.NewTaskStore(db).Create(name, "", points, category, required, streakable, activeDays)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func hasBadge(badges []model.Badge, name string) bool {
	for _, b := range badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

func TestRecordCompletionAwardsXP(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	result, err := e.RecordCompletion(context.Background(), child.ID, task.ID, testToday)
	if err != nil {
		t.Fatalf("record completion: %v", err)
	}
	if result.CompletionID == 0 {
		t.Error("expected a completion id")
	}
	if result.XPGained != 5 || result.TotalXP != 5 {
		t.Errorf("xp_gained = %d, total = %d, want 5 and 5", result.XPGained, result.TotalXP)
	}
	if result.Level != 1 || result.LevelUp {
		t.Errorf("level = %d, level_up = %v, want 1 and false", result.Level, result.LevelUp)
	}
	if result.Praise == "" {
		t.Error("expected a praise message")
	}

	got, err := store.NewChildStore(db).GetByID(child.ID)
	if err != nil {
		t.Fatalf("reload child: %v", err)
	}
	if got.XP != 5 || got.Level != 1 {
		t.Errorf("persisted xp = %d, level = %d, want 5 and 1", got.XP, got.Level)
	}
}

func TestRecordCompletionLevelUp(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Big Project", 50, model.CategoryWeekly, false, false, nil)

	result, err := e.RecordCompletion(context.Background(), child.ID, task.ID, testToday)
	if err != nil {
		t.Fatalf("record completion: %v", err)
	}
	if result.Level != 2 || !result.LevelUp {
		t.Errorf("level = %d, level_up = %v, want 2 and true", result.Level, result.LevelUp)
	}
}

func TestRecordCompletionDuplicateRejected(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	if _, err := e.RecordCompletion(context.Background(), child.ID, task.ID, testToday); err != nil {
		t.Fatalf("first record: %v", err)
	}
	_, err := e.RecordCompletion(context.Background(), child.ID, task.ID, testToday)
	if err != ErrDuplicateCompletion {
		t.Fatalf("err = %v, want ErrDuplicateCompletion", err)
	}

	got, _ := store.NewChildStore(db).GetByID(child.ID)
	if got.XP != 5 {
		t.Errorf("xp after rejected duplicate = %d, want 5", got.XP)
	}
}

func TestRecordCompletionUnknownEntities(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	if _, err := e.RecordCompletion(context.Background(), 9999, task.ID, testToday); err != ErrNotFound {
		t.Errorf("unknown child: err = %v, want ErrNotFound", err)
	}
	if _, err := e.RecordCompletion(context.Background(), child.ID, 9999, testToday); err != ErrNotFound {
		t.Errorf("unknown task: err = %v, want ErrNotFound", err)
	}
}

func TestRecordCompletionZeroDateMeansToday(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	if _, err := e.RecordCompletion(context.Background(), child.ID, task.ID, time.Time{}); err != nil {
		t.Fatalf("record completion: %v", err)
	}
	exists, err := store.NewCompletionStore(db).Exists(child.ID, task.ID, testToday)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("expected completion recorded for today")
	}
}

func TestStreakProgression(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	day1 := Date(2026, time.August, 24)
	for i, want := range []int{1, 2, 3} {
		result, err := e.RecordCompletion(context.Background(), child.ID, task.ID, day1.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("day %d: %v", i+1, err)
		}
		if result.StreakCount != want {
			t.Errorf("day %d streak = %d, want %d", i+1, result.StreakCount, want)
		}
	}
}

func TestStreakGapResets(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	if _, err := e.RecordCompletion(context.Background(), child.ID, task.ID, Date(2026, time.August, 24)); err != nil {
		t.Fatal(err)
	}
	result, err := e.RecordCompletion(context.Background(), child.ID, task.ID, Date(2026, time.August, 26))
	if err != nil {
		t.Fatal(err)
	}
	if result.StreakCount != 1 {
		t.Errorf("streak after gap = %d, want 1", result.StreakCount)
	}
}

func TestStreakSameDayIdempotent(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	bed := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)
	teeth := mustCreateTask(t, db, "Brush Teeth", 3, model.CategoryDaily, true, true, nil)

	day := Date(2026, time.August, 24)
	if _, err := e.RecordCompletion(context.Background(), child.ID, bed.ID, day); err != nil {
		t.Fatal(err)
	}
	result, err := e.RecordCompletion(context.Background(), child.ID, teeth.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	if result.StreakCount != 1 {
		t.Errorf("streak after second same-day completion = %d, want 1", result.StreakCount)
	}
}

func TestStreakIgnoresOptionalTasks(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)
	kind := mustCreateTask(t, db, "Be Kind", 5, model.CategoryBehaviour, false, true, nil)

	result, err := e.RecordCompletion(context.Background(), child.ID, kind.ID, testToday)
	if err != nil {
		t.Fatal(err)
	}
	if result.StreakCount != 0 {
		t.Errorf("streak = %d, want 0 (optional task should not count)", result.StreakCount)
	}
}

func TestStreakOutOfOrderUnchanged(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	day2 := Date(2026, time.August, 25)
	if _, err := e.RecordCompletion(context.Background(), child.ID, task.ID, day2); err != nil {
		t.Fatal(err)
	}
	result, err := e.RecordCompletion(context.Background(), child.ID, task.ID, Date(2026, time.August, 24))
	if err != nil {
		t.Fatal(err)
	}
	if result.StreakCount != 1 {
		t.Errorf("streak = %d, want 1 (backfill must not advance it)", result.StreakCount)
	}

	got, _ := store.NewChildStore(db).GetByID(child.ID)
	if got.LastCompletionDate == nil || !SameDay(*got.LastCompletionDate, day2) {
		t.Errorf("last_completion_date = %v, want %s", got.LastCompletionDate, day2.Format("2006-01-02"))
	}
}

func TestMorningHeroBadge(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	tasks := []*model.Task{
		mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil),
		mustCreateTask(t, db, "Brush Teeth", 3, model.CategoryDaily, true, true, nil),
		mustCreateTask(t, db, "Feed Cat", 2, model.CategoryDaily, false, false, nil),
	}

	// Clock is 08:00, before the 9 AM cutoff. Third completion today wins it.
	for i, task := range tasks {
		result, err := e.RecordCompletion(context.Background(), child.ID, task.ID, testToday)
		if err != nil {
			t.Fatalf("completion %d: %v", i+1, err)
		}
		earned := hasBadge(result.BadgesEarned, BadgeMorningHero)
		if i < 2 && earned {
			t.Errorf("completion %d: Morning Hero awarded too early", i+1)
		}
		if i == 2 && !earned {
			t.Errorf("completion %d: expected Morning Hero", i+1)
		}
	}

	// A fourth morning completion must not re-award it.
	extra := mustCreateTask(t, db, "Water Plants", 2, model.CategoryDaily, false, false, nil)
	result, err := e.RecordCompletion(context.Background(), child.ID, extra.ID, testToday)
	if err != nil {
		t.Fatal(err)
	}
	if hasBadge(result.BadgesEarned, BadgeMorningHero) {
		t.Error("Morning Hero awarded twice")
	}
}

func TestMorningHeroNotForBackfill(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	yesterday := testToday.AddDate(0, 0, -1)

	for _, name := range []string{"One", "Two", "Three"} {
		task := mustCreateTask(t, db, name, 2, model.CategoryDaily, false, false, nil)
		result, err := e.RecordCompletion(context.Background(), child.ID, task.ID, yesterday)
		if err != nil {
			t.Fatal(err)
		}
		if hasBadge(result.BadgesEarned, BadgeMorningHero) {
			t.Error("Morning Hero awarded for a backfilled date")
		}
	}
}

func TestAllGreenDayBadge(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	bed := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)
	teeth := mustCreateTask(t, db, "Brush Teeth", 3, model.CategoryDaily, true, true, nil)

	day := Date(2026, time.August, 24)
	first, err := e.RecordCompletion(context.Background(), child.ID, bed.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	if hasBadge(first.BadgesEarned, BadgeAllGreenDay) {
		t.Error("All-Green Day awarded with a required task outstanding")
	}

	second, err := e.RecordCompletion(context.Background(), child.ID, teeth.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	if !hasBadge(second.BadgesEarned, BadgeAllGreenDay) {
		t.Error("expected All-Green Day once every required task is done")
	}

	// It can be earned again on a different day.
	next := day.AddDate(0, 0, 1)
	if _, err := e.RecordCompletion(context.Background(), child.ID, bed.ID, next); err != nil {
		t.Fatal(err)
	}
	again, err := e.RecordCompletion(context.Background(), child.ID, teeth.ID, next)
	if err != nil {
		t.Fatal(err)
	}
	if !hasBadge(again.BadgesEarned, BadgeAllGreenDay) {
		t.Error("expected All-Green Day on the second day too")
	}
}

func TestAllGreenDayNeverVacuous(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	kind := mustCreateTask(t, db, "Be Kind", 5, model.CategoryBehaviour, false, true, nil)

	// No required tasks exist, so zero-of-zero must not award.
	result, err := e.RecordCompletion(context.Background(), child.ID, kind.ID, testToday)
	if err != nil {
		t.Fatal(err)
	}
	if hasBadge(result.BadgesEarned, BadgeAllGreenDay) {
		t.Error("All-Green Day awarded with no required tasks active")
	}
}

func TestStreakStarBadge(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	start := testToday.AddDate(0, 0, -4)
	for i := 0; i < 5; i++ {
		result, err := e.RecordCompletion(context.Background(), child.ID, task.ID, start.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("day %d: %v", i+1, err)
		}
		earned := hasBadge(result.BadgesEarned, BadgeStreakStar)
		if i < 4 && earned {
			t.Errorf("day %d: Streak Star awarded before a 5-day streak", i+1)
		}
		if i == 4 && !earned {
			t.Errorf("day %d: expected Streak Star", i+1)
		}
	}
}

func TestTidyMasterBadge(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	tidy := mustCreateTask(t, db, "Tidy Room", 15, model.CategoryWeekly, false, false, nil)

	start := testToday.AddDate(0, 0, -10)
	for i := 0; i < 10; i++ {
		result, err := e.RecordCompletion(context.Background(), child.ID, tidy.ID, start.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("completion %d: %v", i+1, err)
		}
		earned := hasBadge(result.BadgesEarned, BadgeTidyMaster)
		if i < 9 && earned {
			t.Errorf("completion %d: Tidy Master awarded early", i+1)
		}
		if i == 9 && !earned {
			t.Errorf("completion %d: expected Tidy Master", i+1)
		}
	}
}

func TestRemoveCompletionReversesXP(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Big Project", 50, model.CategoryWeekly, false, false, nil)

	recorded, err := e.RecordCompletion(context.Background(), child.ID, task.ID, testToday)
	if err != nil {
		t.Fatal(err)
	}

	removal, err := e.RemoveCompletion(context.Background(), recorded.CompletionID)
	if err != nil {
		t.Fatalf("remove completion: %v", err)
	}
	if removal.XPRemoved != 50 {
		t.Errorf("xp_removed = %d, want 50", removal.XPRemoved)
	}
	if removal.NewLevel != 1 || !removal.LevelChanged {
		t.Errorf("new_level = %d, level_changed = %v, want 1 and true", removal.NewLevel, removal.LevelChanged)
	}

	got, _ := store.NewChildStore(db).GetByID(child.ID)
	if got.XP != 0 || got.Level != 1 {
		t.Errorf("xp = %d, level = %d after removal, want 0 and 1", got.XP, got.Level)
	}

	comp, _ := store.NewCompletionStore(db).GetByID(recorded.CompletionID)
	if comp != nil {
		t.Error("completion row still present after removal")
	}
}

func TestRemoveCompletionClearsOrphanedStreak(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	recorded, err := e.RecordCompletion(context.Background(), child.ID, task.ID, testToday)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.RemoveCompletion(context.Background(), recorded.CompletionID); err != nil {
		t.Fatal(err)
	}

	got, _ := store.NewChildStore(db).GetByID(child.ID)
	if got.StreakCount != 0 || got.LastCompletionDate != nil {
		t.Errorf("streak = %d, last = %v after removing only completion, want 0 and nil",
			got.StreakCount, got.LastCompletionDate)
	}
}

func TestRemoveCompletionNotFound(t *testing.T) {
	e, _ := setupEngine(t)
	if _, err := e.RemoveCompletion(context.Background(), 9999); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveCompletionKeepsBadges(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	day := Date(2026, time.August, 24)
	recorded, err := e.RecordCompletion(context.Background(), child.ID, task.ID, day)
	if err != nil {
		t.Fatal(err)
	}
	if !hasBadge(recorded.BadgesEarned, BadgeAllGreenDay) {
		t.Fatal("fixture expected an All-Green Day award")
	}

	if _, err := e.RemoveCompletion(context.Background(), recorded.CompletionID); err != nil {
		t.Fatal(err)
	}
	has, err := store.NewBadgeStore(db).Exists(child.ID, BadgeAllGreenDay)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Error("badge revoked by completion removal; badges are permanent")
	}
}

func TestCalculateWeeklyPayout(t *testing.T) {
	weekStart := Date(2026, time.August, 24)

	// The required task is active only on Monday, so completing it that day
	// satisfies the whole week.
	t.Run("full payout when all required done", func(t *testing.T) {
		e, db := setupEngine(t)
		child := mustCreateChild(t, db, "Ada")
		required := mustCreateTask(t, db, "Tidy Room", 15, model.CategoryWeekly, true, false, []int{0})

		if _, err := e.RecordCompletion(context.Background(), child.ID, required.ID, weekStart); err != nil {
			t.Fatal(err)
		}

		result, err := e.CalculateWeeklyPayout(context.Background(), child.ID, weekStart)
		if err != nil {
			t.Fatal(err)
		}
		if !result.AllRequiredCompleted {
			t.Error("expected all_required_completed")
		}
		if !result.Payout.Equal(decimal.RequireFromString("3.00")) {
			t.Errorf("payout = %s, want 3.00", result.Payout)
		}
	})

	t.Run("threshold payout on points alone", func(t *testing.T) {
		e, db := setupEngine(t)
		child := mustCreateChild(t, db, "Ada")
		mustCreateTask(t, db, "Tidy Room", 15, model.CategoryWeekly, true, false, []int{0})
		bonus := mustCreateTask(t, db, "Be Kind", 9, model.CategoryBehaviour, false, false, nil)

		// 45 points of optional work, required Monday task skipped.
		for i := 0; i < 5; i++ {
			if _, err := e.RecordCompletion(context.Background(), child.ID, bonus.ID, weekStart.AddDate(0, 0, i)); err != nil {
				t.Fatal(err)
			}
		}

		result, err := e.CalculateWeeklyPayout(context.Background(), child.ID, weekStart)
		if err != nil {
			t.Fatal(err)
		}
		if result.AllRequiredCompleted {
			t.Error("required task was skipped; all_required_completed should be false")
		}
		if result.TotalPoints != 45 {
			t.Errorf("total_points = %d, want 45", result.TotalPoints)
		}
		if !result.Payout.Equal(decimal.RequireFromString("2.00")) {
			t.Errorf("payout = %s, want 2.00", result.Payout)
		}
	})

	t.Run("below every threshold pays zero", func(t *testing.T) {
		e, db := setupEngine(t)
		child := mustCreateChild(t, db, "Ada")
		mustCreateTask(t, db, "Tidy Room", 15, model.CategoryWeekly, true, false, []int{0})
		bonus := mustCreateTask(t, db, "Be Kind", 10, model.CategoryBehaviour, false, false, nil)

		for i := 0; i < 2; i++ {
			if _, err := e.RecordCompletion(context.Background(), child.ID, bonus.ID, weekStart.AddDate(0, 0, i)); err != nil {
				t.Fatal(err)
			}
		}

		result, err := e.CalculateWeeklyPayout(context.Background(), child.ID, weekStart)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Payout.Equal(decimal.Zero) {
			t.Errorf("payout = %s, want 0", result.Payout)
		}
	})

	t.Run("mid-week date normalized to its Monday", func(t *testing.T) {
		e, db := setupEngine(t)
		child := mustCreateChild(t, db, "Ada")
		bonus := mustCreateTask(t, db, "Be Kind", 10, model.CategoryBehaviour, false, false, nil)

		if _, err := e.RecordCompletion(context.Background(), child.ID, bonus.ID, weekStart); err != nil {
			t.Fatal(err)
		}

		result, err := e.CalculateWeeklyPayout(context.Background(), child.ID, weekStart.AddDate(0, 0, 3))
		if err != nil {
			t.Fatal(err)
		}
		if result.TotalPoints != 10 {
			t.Errorf("total_points = %d, want 10 (Monday completion inside the week)", result.TotalPoints)
		}
	})

	t.Run("unknown child", func(t *testing.T) {
		e, _ := setupEngine(t)
		if _, err := e.CalculateWeeklyPayout(context.Background(), 9999, weekStart); err != ErrNotFound {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestCloseWeekIdempotent(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	mustCreateTask(t, db, "Tidy Room", 15, model.CategoryWeekly, true, false, []int{0})
	bonus := mustCreateTask(t, db, "Be Kind", 30, model.CategoryBehaviour, false, false, nil)

	// testNow falls in the week starting Monday 2026-08-24. The required
	// Monday task is left undone, so the threshold tier applies.
	if _, err := e.RecordCompletion(context.Background(), child.ID, bonus.ID, testToday); err != nil {
		t.Fatal(err)
	}

	first, err := e.CloseWeek(context.Background())
	if err != nil {
		t.Fatalf("close week: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("reports = %d, want 1", len(first))
	}
	if first[0].Skipped {
		t.Error("first close marked skipped")
	}
	if first[0].TotalPoints != 30 {
		t.Errorf("total_points = %d, want 30", first[0].TotalPoints)
	}
	if !first[0].Payout.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("payout = %s, want 1.00", first[0].Payout)
	}

	second, err := e.CloseWeek(context.Background())
	if err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !second[0].Skipped {
		t.Error("second close should be skipped")
	}
	if second[0].TotalPoints != first[0].TotalPoints || !second[0].Payout.Equal(first[0].Payout) {
		t.Error("skipped report should echo the stored summary")
	}

	summaries, err := store.NewSummaryStore(db).ListByChild(child.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Errorf("summaries = %d, want exactly 1", len(summaries))
	}
}

func TestResetWeek(t *testing.T) {
	e, db := setupEngine(t)
	child := mustCreateChild(t, db, "Ada")
	task := mustCreateTask(t, db, "Make Bed", 5, model.CategoryDaily, true, true, nil)

	weekStart := WeekStart(testToday)
	var lastID int64
	for i := 0; i < 3; i++ {
		result, err := e.RecordCompletion(context.Background(), child.ID, task.ID, weekStart.AddDate(0, 0, i))
		if err != nil {
			t.Fatal(err)
		}
		lastID = result.CompletionID
	}

	reports, err := e.ResetWeek(context.Background())
	if err != nil {
		t.Fatalf("reset week: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reports))
	}
	if reports[0].XPRemoved != 15 {
		t.Errorf("xp_removed = %d, want 15", reports[0].XPRemoved)
	}

	got, _ := store.NewChildStore(db).GetByID(child.ID)
	if got.XP != 0 || got.StreakCount != 0 || got.LastCompletionDate != nil {
		t.Errorf("child after reset: xp = %d, streak = %d, last = %v, want all cleared",
			got.XP, got.StreakCount, got.LastCompletionDate)
	}

	comp, _ := store.NewCompletionStore(db).GetByID(lastID)
	if comp != nil {
		t.Error("completions still present after reset")
	}
}
