package streaks

import "time"

// WeekStart returns the Sunday on or before t, at local midnight. Weeks are
// Sunday-anchored everywhere in the streak model.
func WeekStart(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// DayIndex returns 0 (Sunday) .. 6 (Saturday) for t.
func DayIndex(t time.Time) int {
	return int(t.Weekday())
}

// FormatDate renders the canonical YYYY-MM-DD key used for DATE columns.
// String equality against DATE columns avoids timezone/type mismatches.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
