package rules

import "time"

// Calendar dates are date-only values, represented as midnight UTC. Weeks
// are Monday-anchored: weekday index 0 is Monday, 6 is Sunday.

// Date builds a date-only value.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// WeekdayIndex returns the Monday-based weekday of d: Monday=0 … Sunday=6.
func WeekdayIndex(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

// WeekStart returns the Monday of d's week.
func WeekStart(d time.Time) time.Time {
	d = DateOf(d)
	return d.AddDate(0, 0, -WeekdayIndex(d))
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
