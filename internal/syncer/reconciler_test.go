package syncer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/localstore"
)

// fakeClient is an in-memory Client double. Push stores the payload so a
// later Pull returns it, mirroring the replace-then-pull server contract.
type fakeClient struct {
	mu        sync.Mutex
	remote    *internal.SyncPayload
	pullErr   error
	pushErr   error
	user      string
	userErr   error
	pushes    int
	userCalls int
}

func (f *fakeClient) Pull(ctx context.Context) (*internal.SyncPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	if f.remote == nil {
		return &internal.SyncPayload{
			Categories: []internal.HabitCategory{},
			Habits:     []internal.Habit{},
			Entries:    []internal.HabitEntry{},
		}, nil
	}
	cp := *f.remote
	return &cp, nil
}

func (f *fakeClient) Push(ctx context.Context, payload *internal.SyncPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	cp := *payload
	f.remote = &cp
	f.pushes++
	return nil
}

func (f *fakeClient) CurrentUser(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	return f.user, f.userErr
}

func (f *fakeClient) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushes
}

func (f *fakeClient) userCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCalls
}

func (f *fakeClient) setUser(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = email
}

func newSyncedStore(t *testing.T) *localstore.Store {
	t.Helper()
	return localstore.New(localstore.NewMemoryKV(0), internal.NopLogger{})
}

func remoteWithHabit() *internal.SyncPayload {
	return &internal.SyncPayload{
		Categories: []internal.HabitCategory{{ID: "c1", Name: "Remote", Color: "#000000"}},
		Habits: []internal.Habit{{
			ID: "rh1", Name: "Remote habit", CategoryID: "c1",
			Frequency: internal.FrequencyDaily, Color: "#ffffff",
		}},
		Entries: []internal.HabitEntry{},
	}
}

func localHabit(name string) internal.Habit {
	return internal.Habit{
		Name: name, CategoryID: "health",
		Frequency: internal.FrequencyDaily, Color: "#22c55e",
	}
}

func TestHydrateOnStartKeepsNonEmptyLocalAgainstEmptyRemote(t *testing.T) {
	store := newSyncedStore(t)
	store.AddHabit(localHabit("Stretch"))

	client := &fakeClient{}
	r := NewWithTimings(store, client, internal.NopLogger{}, time.Hour, time.Hour)
	defer r.Close()

	r.HydrateOnStart(context.Background())
	assert.Len(t, store.Snapshot().Habits, 1)
}

func TestHydrateOnStartAdoptsDataBearingRemote(t *testing.T) {
	store := newSyncedStore(t)
	store.AddHabit(localHabit("Stretch"))

	client := &fakeClient{remote: remoteWithHabit()}
	r := NewWithTimings(store, client, internal.NopLogger{}, time.Hour, time.Hour)
	defer r.Close()

	r.HydrateOnStart(context.Background())
	snap := store.Snapshot()
	require.Len(t, snap.Habits, 1)
	assert.Equal(t, "rh1", snap.Habits[0].ID)
}

func TestHydrateOnStartAdoptsEmptyRemoteIntoEmptyLocal(t *testing.T) {
	store := newSyncedStore(t)
	client := &fakeClient{}
	r := NewWithTimings(store, client, internal.NopLogger{}, time.Hour, time.Hour)
	defer r.Close()

	r.HydrateOnStart(context.Background())
	snap := store.Snapshot()
	assert.Empty(t, snap.Habits)
	// The default seed categories are replaced by the remote's empty set.
	assert.Empty(t, snap.Categories)
}

func TestHydrateOnStartIgnoresPullFailure(t *testing.T) {
	store := newSyncedStore(t)
	store.AddHabit(localHabit("Stretch"))

	client := &fakeClient{pullErr: fmt.Errorf("%w: pull: boom", internal.ErrNetwork)}
	r := NewWithTimings(store, client, internal.NopLogger{}, time.Hour, time.Hour)
	defer r.Close()

	r.HydrateOnStart(context.Background())
	assert.Len(t, store.Snapshot().Habits, 1)
}

func TestSyncAfterAuthSeedsEmptyRemote(t *testing.T) {
	store := newSyncedStore(t)
	h := store.AddHabit(localHabit("Stretch"))

	client := &fakeClient{}
	r := NewWithTimings(store, client, internal.NopLogger{}, time.Hour, time.Hour)
	defer r.Close()

	require.NoError(t, r.SyncAfterAuth(context.Background()))

	// Local seeded the empty remote, then adopted it back.
	assert.Equal(t, 1, client.pushCount())
	snap := store.Snapshot()
	require.Len(t, snap.Habits, 1)
	assert.Equal(t, h.ID, snap.Habits[0].ID)
}

func TestSyncAfterAuthAdoptsNonEmptyRemote(t *testing.T) {
	store := newSyncedStore(t)
	store.AddHabit(localHabit("Stretch"))

	client := &fakeClient{remote: remoteWithHabit()}
	r := NewWithTimings(store, client, internal.NopLogger{}, time.Hour, time.Hour)
	defer r.Close()

	require.NoError(t, r.SyncAfterAuth(context.Background()))

	// Remote already had data, so no seeding push happened.
	assert.Equal(t, 0, client.pushCount())
	snap := store.Snapshot()
	require.Len(t, snap.Habits, 1)
	assert.Equal(t, "rh1", snap.Habits[0].ID)
}

func TestSyncAfterAuthPrimesAuthCache(t *testing.T) {
	store := newSyncedStore(t)
	store.AddHabit(localHabit("Stretch"))

	client := &fakeClient{user: "a@example.com"}
	r := NewWithTimings(store, client, internal.NopLogger{}, 30*time.Millisecond, time.Hour)
	defer r.Close()

	require.NoError(t, r.SyncAfterAuth(context.Background()))

	// The next debounced push trusts the cached auth state.
	store.AddHabit(localHabit("Read"))
	assert.Eventually(t, func() bool { return client.pushCount() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, client.userCallCount())
}

func TestDebouncedPushCoalescesMutationBursts(t *testing.T) {
	store := newSyncedStore(t)
	client := &fakeClient{user: "a@example.com"}
	r := NewWithTimings(store, client, internal.NopLogger{}, 50*time.Millisecond, time.Hour)
	defer r.Close()

	for i := 0; i < 5; i++ {
		store.AddHabit(localHabit(fmt.Sprintf("Habit %d", i)))
	}

	assert.Eventually(t, func() bool { return client.pushCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 1, client.pushCount())

	// The pushed payload carries all five habits.
	payload, err := client.Pull(context.Background())
	require.NoError(t, err)
	assert.Len(t, payload.Habits, 5)
}

func TestDebouncedPushSkippedWhenSignedOut(t *testing.T) {
	store := newSyncedStore(t)
	client := &fakeClient{}
	r := NewWithTimings(store, client, internal.NopLogger{}, 20*time.Millisecond, time.Hour)
	defer r.Close()

	store.AddHabit(localHabit("Stretch"))
	assert.Eventually(t, func() bool { return client.userCallCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, client.pushCount())

	// After signing in, the stale cached answer must be discarded.
	client.setUser("a@example.com")
	r.ResetAuthCache()
	store.AddHabit(localHabit("Read"))
	assert.Eventually(t, func() bool { return client.pushCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestManualPullAdoptsRemote(t *testing.T) {
	store := newSyncedStore(t)
	client := &fakeClient{remote: remoteWithHabit()}
	r := NewWithTimings(store, client, internal.NopLogger{}, time.Hour, time.Hour)
	defer r.Close()

	require.NoError(t, r.ManualPull(context.Background()))
	assert.Equal(t, "rh1", store.Snapshot().Habits[0].ID)
}

func TestManualOpsKeepErrorCategories(t *testing.T) {
	store := newSyncedStore(t)
	client := &fakeClient{
		pullErr: fmt.Errorf("%w: pull", internal.ErrUnauthenticated),
		pushErr: fmt.Errorf("%w: push: connection refused", internal.ErrNetwork),
	}
	r := NewWithTimings(store, client, internal.NopLogger{}, time.Hour, time.Hour)
	defer r.Close()

	assert.ErrorIs(t, r.ManualPull(context.Background()), internal.ErrUnauthenticated)
	assert.ErrorIs(t, r.ManualPush(context.Background()), internal.ErrNetwork)
}
