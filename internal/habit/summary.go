package habit

import (
	"math"
	"time"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/dateutil"
)

type dayTally struct {
	done int
	due  int
}

// SummaryForMonth rolls every habit's due days in the anchor month up into a
// MonthlySummary. Skipped days never enter the completion-rate denominator.
// Best and worst day are chosen by strict comparison over an ascending day
// scan, so ties keep the earliest day; both are nil when no day had any due
// habit.
func SummaryForMonth(habits []internal.Habit, entries []internal.HabitEntry, anchor time.Time) internal.MonthlySummary {
	days := dateutil.DaysInMonth(anchor)
	tallies := make(map[string]*dayTally)

	var totalDone, totalMissed, totalSkipped int
	for _, h := range habits {
		for _, d := range days {
			if !IsDue(h, d) {
				continue
			}
			key := dateutil.DayKey(d)
			t := tallies[key]
			if t == nil {
				t = &dayTally{}
				tallies[key] = t
			}
			t.due++
			switch StatusFor(h, entries, d) {
			case internal.StatusDone:
				totalDone++
				t.done++
			case internal.StatusSkipped:
				totalSkipped++
			default:
				totalMissed++
			}
		}
	}

	var bestDay, worstDay *string
	bestRate, worstRate := -1.0, 2.0
	for _, d := range days {
		key := dateutil.DayKey(d)
		t := tallies[key]
		if t == nil {
			continue
		}
		rate := float64(t.done) / float64(t.due)
		if rate > bestRate {
			bestRate = rate
			k := key
			bestDay = &k
		}
		if rate < worstRate {
			worstRate = rate
			k := key
			worstDay = &k
		}
	}

	completionRate := 0
	if tracked := totalDone + totalMissed; tracked > 0 {
		completionRate = int(math.Round(float64(totalDone) / float64(tracked) * 100))
	}

	return internal.MonthlySummary{
		Month:          dateutil.MonthKey(anchor),
		CompletionRate: completionRate,
		BestDay:        bestDay,
		WorstDay:       worstDay,
		TotalDone:      totalDone,
		TotalMissed:    totalMissed,
		TotalSkipped:   totalSkipped,
	}
}

// CompletionForHabit counts one habit's done days against its due days in
// the anchor month. The rate is a rounded percentage, 0 when nothing was due.
func CompletionForHabit(h internal.Habit, entries []internal.HabitEntry, anchor time.Time) (done, due, rate int) {
	for _, d := range dateutil.DaysInMonth(anchor) {
		if !IsDue(h, d) {
			continue
		}
		due++
		if StatusFor(h, entries, d) == internal.StatusDone {
			done++
		}
	}
	if due > 0 {
		rate = int(math.Round(float64(done) / float64(due) * 100))
	}
	return done, due, rate
}
