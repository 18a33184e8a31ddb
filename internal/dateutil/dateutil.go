// Package dateutil provides naive calendar-day helpers. Dates are treated
// as plain calendar days in local wall-clock terms; no timezone math.
package dateutil

import "time"

const DayLayout = "2006-01-02"

// DayKey returns the canonical YYYY-MM-DD identifier for a date.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// MonthKey returns the YYYY-MM identifier for the month containing t.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseDayKey parses a YYYY-MM-DD key back into a date.
func ParseDayKey(key string) (time.Time, error) {
	return time.Parse(DayLayout, key)
}

// DaysInMonth returns every calendar day of the month containing anchor,
// in ascending order. The slice is recomputed on each call.
func DaysInMonth(anchor time.Time) []time.Time {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	days := make([]time.Time, 0, 31)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WeekDays returns the 7 contiguous days of the week containing anchor,
// starting on weekStart (time.Sunday or time.Monday).
func WeekDays(anchor time.Time, weekStart time.Weekday) []time.Time {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}
