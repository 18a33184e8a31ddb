package habit

import (
	"time"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/dateutil"
)

// streakLookbackDays bounds the backward scan; anything older no longer
// contributes to either counter.
const streakLookbackDays = 400

// Streak computes the current and longest consecutive-completion runs for a
// habit as of the given date. The scan walks backward day by day; non-due
// days are transparent, skipped days are neutral, and a missed due day
// (recorded or unrecorded) breaks the run. The current streak is captured
// once, at the first break encountered, except that a miss on asOf itself
// pins it to zero.
func Streak(h internal.Habit, entries []internal.HabitEntry, asOf time.Time) (current, longest int) {
	byDate := make(map[string]internal.Status)
	for _, e := range entries {
		if e.HabitID == h.ID {
			byDate[e.Date] = e.Status
		}
	}

	run := 0
	currentSet := false
	for i := 0; i < streakLookbackDays; i++ {
		d := asOf.AddDate(0, 0, -i)
		if !IsDue(h, d) {
			continue
		}

		status, ok := byDate[dateutil.DayKey(d)]
		if !ok {
			status = internal.StatusMissed
		}

		switch status {
		case internal.StatusDone:
			run++
			if run > longest {
				longest = run
			}
		case internal.StatusSkipped:
			// Neutral: neither extends nor breaks the run.
		default:
			if !currentSet {
				if i == 0 {
					current = 0
				} else {
					current = run
				}
				currentSet = true
			}
			run = 0
		}
	}

	// No break in the whole window: the run is the current streak.
	if !currentSet {
		current = run
	}
	return current, longest
}
