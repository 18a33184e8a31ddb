package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/habittracker/internal"
)

func newFileStorage(t *testing.T, dir string) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(
		filepath.Join(dir, "users.json"),
		filepath.Join(dir, "sessions.json"),
		filepath.Join(dir, "snapshots.json"),
		internal.NopLogger{},
	)
	require.NoError(t, err)
	return s
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := newFileStorage(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	u := &internal.User{ID: "u1", Email: "a@example.com", PasswordHash: "x", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, u))

	err := s.CreateUser(ctx, &internal.User{ID: "u2", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := s.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionExpiry(t *testing.T) {
	s := newFileStorage(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.CreateUser(ctx, &internal.User{ID: "u1", Email: "a@example.com"}))
	require.NoError(t, s.CreateSession(ctx, &internal.Session{
		TokenHash: "hash1", UserID: "u1", ExpiresAt: now.Add(time.Hour),
	}))

	u, err := s.GetUserBySession(ctx, "hash1", now)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = s.GetUserBySession(ctx, "hash1", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteSession(ctx, "hash1"))
	_, err = s.GetUserBySession(ctx, "hash1", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPayloadRoundTripAndDefault(t *testing.T) {
	s := newFileStorage(t, t.TempDir())
	defer s.Close()
	ctx := context.Background()

	p, err := s.GetPayload(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, p.Habits)
	assert.NotNil(t, p.Categories)

	payload := &internal.SyncPayload{
		Categories: []internal.HabitCategory{{ID: "c1", Name: "Health", Color: "#22c55e"}},
		Habits: []internal.Habit{{
			ID: "h1", Name: "Stretch", CategoryID: "c1",
			Frequency: internal.FrequencyDaily, Color: "#22c55e",
		}},
		Entries: []internal.HabitEntry{{
			ID: "e1", HabitID: "h1", Date: "2025-04-07", Status: internal.StatusDone,
		}},
	}
	require.NoError(t, s.ReplacePayload(ctx, "u1", payload))

	got, err := s.GetPayload(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// The stored copy is insulated from later caller mutation.
	payload.Habits[0].Name = "changed"
	got, err = s.GetPayload(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Stretch", got.Habits[0].Name)

	// Replace discards, never merges.
	require.NoError(t, s.ReplacePayload(ctx, "u1", &internal.SyncPayload{
		Categories: []internal.HabitCategory{},
		Habits:     []internal.Habit{},
		Entries:    []internal.HabitEntry{},
	}))
	got, err = s.GetPayload(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got.Habits)
}

func TestStateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := newFileStorage(t, dir)
	require.NoError(t, s.CreateUser(ctx, &internal.User{ID: "u1", Email: "a@example.com", PasswordHash: "x"}))
	require.NoError(t, s.ReplacePayload(ctx, "u1", &internal.SyncPayload{
		Categories: []internal.HabitCategory{},
		Habits: []internal.Habit{{
			ID: "h1", Name: "Stretch", CategoryID: "c1",
			Frequency: internal.FrequencyDaily, Color: "#22c55e",
		}},
		Entries: []internal.HabitEntry{},
	}))
	require.NoError(t, s.Close())

	reopened := newFileStorage(t, dir)
	defer reopened.Close()

	u, err := reopened.GetUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	p, err := reopened.GetPayload(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, p.Habits, 1)
	assert.Equal(t, "h1", p.Habits[0].ID)
}
