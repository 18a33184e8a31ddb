// Package habit holds the occurrence-and-analytics engine: due-date
// resolution, status resolution, streaks, monthly aggregation and rewards.
// Every function here is pure and total; inputs are read-only for the
// duration of the call and defined defaults are returned instead of errors.
package habit

import (
	"time"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/dateutil"
)

// IsDue reports whether a habit's occurrence rule matches the given date.
// This is the single source of truth for due-ness; every other component
// resolves due days through here.
func IsDue(h internal.Habit, date time.Time) bool {
	switch h.Frequency {
	case internal.FrequencyDaily:
		return true
	case internal.FrequencyWeekly:
		wd := int(date.Weekday())
		for _, d := range h.WeeklyDays {
			if d == wd {
				return true
			}
		}
		return false
	case internal.FrequencyMonthly:
		// A month shorter than MonthlyDay simply has no occurrence.
		return h.MonthlyDay != nil && date.Day() == *h.MonthlyDay
	default:
		// Unknown frequency values fail closed.
		return false
	}
}

// EntryFor returns the entry recorded for (habitID, dayKey), or nil.
// Uniqueness per (habitID, date) is an upsert invariant of the store, so
// the first match is the only match.
func EntryFor(entries []internal.HabitEntry, habitID, dayKey string) *internal.HabitEntry {
	for i := range entries {
		if entries[i].HabitID == habitID && entries[i].Date == dayKey {
			return &entries[i]
		}
	}
	return nil
}

// StatusFor resolves the observable status of a habit on a date. A day the
// habit is not due resolves to none regardless of recorded entries; a due
// day without an entry counts as missed.
func StatusFor(h internal.Habit, entries []internal.HabitEntry, date time.Time) internal.Status {
	if !IsDue(h, date) {
		return internal.StatusNone
	}
	if e := EntryFor(entries, h.ID, dateutil.DayKey(date)); e != nil {
		return e.Status
	}
	return internal.StatusMissed
}
