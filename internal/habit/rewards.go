package habit

import (
	"time"

	"github.com/yourname/habittracker/internal"
)

// XPPerCompletion is granted each time an entry is upserted to done.
const XPPerCompletion = 10

// EvaluateBadges derives the badge set earned as of the given date. Streak
// badges look at the longest run of any habit; the perfect badges require
// every due day resolved so far in the week/month to be done or skipped,
// with at least one done. Days after asOf are not judged.
func EvaluateBadges(habits []internal.Habit, entries []internal.HabitEntry, asOf time.Time) []string {
	var badges []string

	best := 0
	for _, h := range habits {
		if _, longest := Streak(h, entries, asOf); longest > best {
			best = longest
		}
	}
	if best >= 7 {
		badges = append(badges, internal.BadgeStreak7)
	}
	if best >= 30 {
		badges = append(badges, internal.BadgeStreak30)
	}
	if best >= 100 {
		badges = append(badges, internal.BadgeStreak100)
	}

	week := weekSpan(asOf)
	if perfectSpan(habits, entries, week) {
		badges = append(badges, internal.BadgePerfectWeek)
	}
	month := monthSpanSoFar(asOf)
	if perfectSpan(habits, entries, month) {
		badges = append(badges, internal.BadgePerfectMonth)
	}
	return badges
}

func weekSpan(asOf time.Time) []time.Time {
	days := make([]time.Time, 0, 7)
	for i := 6; i >= 0; i-- {
		days = append(days, asOf.AddDate(0, 0, -i))
	}
	return days
}

func monthSpanSoFar(asOf time.Time) []time.Time {
	days := make([]time.Time, 0, 31)
	for d := 1; d <= asOf.Day(); d++ {
		days = append(days, time.Date(asOf.Year(), asOf.Month(), d, 0, 0, 0, 0, asOf.Location()))
	}
	return days
}

func perfectSpan(habits []internal.Habit, entries []internal.HabitEntry, days []time.Time) bool {
	doneCount := 0
	for _, h := range habits {
		for _, d := range days {
			switch StatusFor(h, entries, d) {
			case internal.StatusDone:
				doneCount++
			case internal.StatusMissed:
				return false
			}
		}
	}
	return doneCount > 0
}
