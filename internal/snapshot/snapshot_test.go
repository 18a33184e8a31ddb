package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/habittracker/internal"
)

func validSnapshot() *internal.Snapshot {
	day := 15
	return &internal.Snapshot{
		Version: 1,
		Categories: []internal.HabitCategory{
			{ID: "c1", Name: "Health", Color: "#22c55e"},
		},
		Habits: []internal.Habit{
			{
				ID: "h1", Name: "Stretch", CategoryID: "c1", Color: "#22c55e",
				Frequency: internal.FrequencyDaily,
				CreatedAt: time.Now(), UpdatedAt: time.Now(),
			},
			{
				ID: "h2", Name: "Review budget", CategoryID: "c1", Color: "#3b82f6",
				Frequency: internal.FrequencyMonthly, MonthlyDay: &day,
				CreatedAt: time.Now(), UpdatedAt: time.Now(),
			},
		},
		Entries: []internal.HabitEntry{
			{ID: "e1", HabitID: "h1", Date: "2025-04-07", Status: internal.StatusDone, UpdatedAt: time.Now()},
		},
		Rewards: internal.Rewards{XP: 10, Badges: []string{}},
	}
}

func TestDefaultSnapshot(t *testing.T) {
	snap := Default()
	assert.NoError(t, Validate(snap))
	assert.Equal(t, 1, snap.Version)
	assert.Len(t, snap.Categories, 4)
	assert.Empty(t, snap.Habits)
	assert.Empty(t, snap.Entries)
	assert.Equal(t, 0, snap.Rewards.XP)

	ids := make([]string, 0, 4)
	for _, c := range snap.Categories {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"health", "study", "exercise", "mind"}, ids)
}

func TestValidateRejectsBadVersion(t *testing.T) {
	snap := validSnapshot()
	snap.Version = 2
	err := Validate(snap)
	assert.ErrorIs(t, err, internal.ErrValidation)
}

func TestValidateRejectsBadWeeklyDays(t *testing.T) {
	snap := validSnapshot()
	snap.Habits[0].Frequency = internal.FrequencyWeekly
	snap.Habits[0].WeeklyDays = []int{1, 7}
	assert.ErrorIs(t, Validate(snap), internal.ErrValidation)
}

func TestValidateRejectsBadEntry(t *testing.T) {
	snap := validSnapshot()
	snap.Entries[0].Status = internal.Status("banana")
	assert.ErrorIs(t, Validate(snap), internal.ErrValidation)

	snap = validSnapshot()
	snap.Entries[0].Date = "04/07/2025"
	assert.ErrorIs(t, Validate(snap), internal.ErrValidation)
}

func TestValidateNil(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), internal.ErrValidation)
	assert.ErrorIs(t, ValidatePayload(nil), internal.ErrValidation)
}

func TestExportImportRoundTrip(t *testing.T) {
	snap := validSnapshot()
	text, err := ExportJSON(snap)
	require.NoError(t, err)

	got, err := ImportJSON(text)
	require.NoError(t, err)
	assert.Equal(t, snap.Version, got.Version)
	assert.Equal(t, snap.Categories, got.Categories)
	assert.Len(t, got.Habits, 2)
	assert.Equal(t, "h2", got.Habits[1].ID)
	require.NotNil(t, got.Habits[1].MonthlyDay)
	assert.Equal(t, 15, *got.Habits[1].MonthlyDay)
	assert.Equal(t, snap.Rewards.XP, got.Rewards.XP)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, err := ImportJSON("not json at all")
	assert.ErrorIs(t, err, internal.ErrValidation)

	// Well-formed JSON with an invalid schema is still rejected.
	_, err = ImportJSON(`{"version":3,"habits":[],"categories":[],"entries":[]}`)
	assert.ErrorIs(t, err, internal.ErrValidation)
}
