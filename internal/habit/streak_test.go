package habit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourname/habittracker/internal"
)

func doneEntry(habitID, date string) internal.HabitEntry {
	return internal.HabitEntry{ID: habitID + "-" + date, HabitID: habitID, Date: date, Status: internal.StatusDone}
}

func TestStreakConsecutiveDone(t *testing.T) {
	h := internal.Habit{ID: "h1", Frequency: internal.FrequencyDaily}
	entries := []internal.HabitEntry{
		doneEntry("h1", "2025-03-08"),
		doneEntry("h1", "2025-03-09"),
		doneEntry("h1", "2025-03-10"),
		// An older run, separated by a miss on 03-07.
		doneEntry("h1", "2025-03-04"),
		doneEntry("h1", "2025-03-05"),
		doneEntry("h1", "2025-03-06"),
	}
	current, longest := Streak(h, entries, day("2025-03-10"))
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreakLongestBeatsCurrent(t *testing.T) {
	h := internal.Habit{ID: "h1", Frequency: internal.FrequencyDaily}
	entries := []internal.HabitEntry{
		doneEntry("h1", "2025-03-10"),
		doneEntry("h1", "2025-03-09"),
		// miss on 03-08
		doneEntry("h1", "2025-03-07"),
		doneEntry("h1", "2025-03-06"),
		doneEntry("h1", "2025-03-05"),
		doneEntry("h1", "2025-03-04"),
		doneEntry("h1", "2025-03-03"),
	}
	current, longest := Streak(h, entries, day("2025-03-10"))
	assert.Equal(t, 2, current)
	assert.Equal(t, 5, longest)
}

func TestStreakSkippedIsNeutral(t *testing.T) {
	h := internal.Habit{ID: "h1", Frequency: internal.FrequencyDaily}
	entries := []internal.HabitEntry{
		doneEntry("h1", "2025-03-04"),
		doneEntry("h1", "2025-03-05"),
		doneEntry("h1", "2025-03-06"),
		{ID: "e-skip", HabitID: "h1", Date: "2025-03-07", Status: internal.StatusSkipped},
		doneEntry("h1", "2025-03-08"),
		doneEntry("h1", "2025-03-09"),
		doneEntry("h1", "2025-03-10"),
	}
	current, longest := Streak(h, entries, day("2025-03-10"))
	assert.Equal(t, 6, current)
	assert.Equal(t, 6, longest)
}

func TestStreakMissOnAsOfPinsCurrentToZero(t *testing.T) {
	h := internal.Habit{ID: "h1", Frequency: internal.FrequencyDaily}
	entries := []internal.HabitEntry{
		doneEntry("h1", "2025-03-07"),
		doneEntry("h1", "2025-03-08"),
		doneEntry("h1", "2025-03-09"),
	}
	current, longest := Streak(h, entries, day("2025-03-10"))
	assert.Equal(t, 0, current)
	assert.Equal(t, 3, longest)
}

func TestStreakNonDueDaysAreTransparent(t *testing.T) {
	// Mondays only; done on three consecutive Mondays.
	h := internal.Habit{ID: "h1", Frequency: internal.FrequencyWeekly, WeeklyDays: []int{1}}
	entries := []internal.HabitEntry{
		doneEntry("h1", "2025-03-24"),
		doneEntry("h1", "2025-03-31"),
		doneEntry("h1", "2025-04-07"),
	}
	// 2025-04-09 is a Wednesday; the intervening non-due days do not break the run.
	current, longest := Streak(h, entries, day("2025-04-09"))
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)
}

func TestStreakNoDueDays(t *testing.T) {
	h := internal.Habit{ID: "h1", Frequency: internal.FrequencyWeekly}
	current, longest := Streak(h, nil, day("2025-03-10"))
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}

func TestStreakNoEntries(t *testing.T) {
	h := internal.Habit{ID: "h1", Frequency: internal.FrequencyDaily}
	current, longest := Streak(h, nil, day("2025-03-10"))
	assert.Equal(t, 0, current)
	assert.Equal(t, 0, longest)
}
