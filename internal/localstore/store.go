// Package localstore is the device-resident snapshot store: the
// authoritative local state behind the UI, persisted synchronously on every
// mutation through a string key-value boundary.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/habit"
	"github.com/yourname/habittracker/internal/snapshot"
)

const snapshotKey = "habit_tracker_db"

// Bounds applied when a save hits the storage quota.
const (
	maxCategoriesOnQuota = 10
	maxHabitsOnQuota     = 20
	maxEntriesOnQuota    = 50
)

// MutationHook runs after a mutation has been persisted. The sync
// reconciler installs its debounced push here.
type MutationHook func()

type Store struct {
	kv     KV
	logger internal.Logger
	hook   MutationHook
	now    func() time.Time

	mu   sync.RWMutex
	snap *internal.Snapshot
}

func New(kv KV, logger internal.Logger) *Store {
	if logger == nil {
		logger = internal.NopLogger{}
	}
	s := &Store{kv: kv, logger: logger, now: time.Now}
	s.snap = s.load()
	return s
}

func (s *Store) SetMutationHook(fn MutationHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hook = fn
}

// load returns the persisted snapshot, falling back to the default on any
// missing, unreadable, or schema-invalid state. The fallback never errors
// outward.
func (s *Store) load() *internal.Snapshot {
	raw, ok := s.kv.Get(snapshotKey)
	if !ok {
		return snapshot.Default()
	}
	var snap internal.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.Warnf("localstore: unreadable snapshot, using default: %v", err)
		return snapshot.Default()
	}
	if err := snapshot.Validate(&snap); err != nil {
		s.logger.Warnf("localstore: invalid snapshot, using default: %v", err)
		return snapshot.Default()
	}
	return &snap
}

// Reload re-reads the persisted snapshot, discarding in-memory state.
func (s *Store) Reload() internal.Snapshot {
	s.mu.Lock()
	s.snap = s.load()
	s.mu.Unlock()
	return s.Snapshot()
}

// Snapshot returns a copy safe to read without coordination.
func (s *Store) Snapshot() internal.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snap)
}

// Payload returns the over-the-wire subset of the current snapshot.
func (s *Store) Payload() internal.SyncPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := copySnapshot(s.snap)
	return internal.SyncPayload{Categories: c.Categories, Habits: c.Habits, Entries: c.Entries}
}

// Empty reports whether the store holds no habits and no entries.
func (s *Store) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.Habits) == 0 && len(s.snap.Entries) == 0
}

// persist writes the snapshot through the KV boundary. A quota error
// truncates collections to bounded counts (newest entries win) and retries
// once; failure is logged, never propagated.
func (s *Store) persist() {
	data, err := json.Marshal(s.snap)
	if err != nil {
		s.logger.Errorf("localstore: marshal snapshot: %v", err)
		return
	}
	err = s.kv.Set(snapshotKey, string(data))
	if err == nil {
		return
	}
	if !errors.Is(err, internal.ErrQuotaExceeded) {
		s.logger.Errorf("localstore: save snapshot: %v", err)
		return
	}

	s.logger.Warnf("localstore: quota exceeded, truncating and retrying: %v", err)
	s.truncateLocked()
	data, err = json.Marshal(s.snap)
	if err != nil {
		s.logger.Errorf("localstore: marshal truncated snapshot: %v", err)
		return
	}
	if err := s.kv.Set(snapshotKey, string(data)); err != nil {
		s.logger.Errorf("localstore: save after truncation failed: %v", err)
	}
}

func (s *Store) truncateLocked() {
	if len(s.snap.Categories) > maxCategoriesOnQuota {
		s.snap.Categories = s.snap.Categories[:maxCategoriesOnQuota]
	}
	if len(s.snap.Habits) > maxHabitsOnQuota {
		s.snap.Habits = s.snap.Habits[:maxHabitsOnQuota]
	}
	if len(s.snap.Entries) > maxEntriesOnQuota {
		entries := s.snap.Entries
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Date > entries[j].Date
		})
		s.snap.Entries = entries[:maxEntriesOnQuota]
	}
}

func (s *Store) afterMutation() {
	var hook MutationHook
	s.mu.Lock()
	s.persist()
	hook = s.hook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// Adopt replaces the local habits, categories and entries with a remote
// payload. Rewards are device-local and survive adoption. Adoption is not a
// mutation: it does not trigger the push hook.
func (s *Store) Adopt(p internal.SyncPayload) {
	s.mu.Lock()
	s.snap.Categories = append([]internal.HabitCategory{}, p.Categories...)
	s.snap.Habits = append([]internal.Habit{}, p.Habits...)
	s.snap.Entries = append([]internal.HabitEntry{}, p.Entries...)
	s.persist()
	s.mu.Unlock()
}

// AddHabit stores a new habit, filling in the id and timestamps. Weekly
// days are normalized to a sorted, de-duplicated set.
func (s *Store) AddHabit(h internal.Habit) internal.Habit {
	now := s.now()
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now
	}
	if h.UpdatedAt.IsZero() {
		h.UpdatedAt = now
	}
	h.WeeklyDays = normalizeWeeklyDays(h.WeeklyDays)

	s.mu.Lock()
	s.snap.Habits = append(s.snap.Habits, h)
	s.mu.Unlock()
	s.afterMutation()
	return h
}

// HabitPatch carries a partial habit update; nil fields stay unchanged.
// MonthlyDay and ReminderTime are nullable, so clearing them is expressed
// through the matching Set flag with a nil value.
type HabitPatch struct {
	Name            *string
	Description     *string
	CategoryID      *string
	Frequency       *internal.Frequency
	WeeklyDays      []int
	MonthlyDay      *int
	SetMonthlyDay   bool
	Color           *string
	ReminderTime    *string
	SetReminderTime bool
}

func (s *Store) UpdateHabit(id string, patch HabitPatch) (internal.Habit, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.snap.Habits {
		if s.snap.Habits[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return internal.Habit{}, fmt.Errorf("%w: habit %s not found", internal.ErrValidation, id)
	}

	h := &s.snap.Habits[idx]
	if patch.Name != nil {
		h.Name = *patch.Name
	}
	if patch.Description != nil {
		h.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		h.CategoryID = *patch.CategoryID
	}
	if patch.Frequency != nil {
		h.Frequency = *patch.Frequency
	}
	if patch.WeeklyDays != nil {
		h.WeeklyDays = normalizeWeeklyDays(patch.WeeklyDays)
	}
	if patch.SetMonthlyDay {
		h.MonthlyDay = patch.MonthlyDay
	}
	if patch.Color != nil {
		h.Color = *patch.Color
	}
	if patch.SetReminderTime {
		h.ReminderTime = patch.ReminderTime
	}
	h.UpdatedAt = s.now()
	updated := *h
	s.mu.Unlock()
	s.afterMutation()
	return updated, nil
}

// DeleteHabit removes a habit and every entry referencing it.
func (s *Store) DeleteHabit(id string) {
	s.mu.Lock()
	habits := s.snap.Habits[:0]
	for _, h := range s.snap.Habits {
		if h.ID != id {
			habits = append(habits, h)
		}
	}
	s.snap.Habits = habits
	entries := s.snap.Entries[:0]
	for _, e := range s.snap.Entries {
		if e.HabitID != id {
			entries = append(entries, e)
		}
	}
	s.snap.Entries = entries
	s.mu.Unlock()
	s.afterMutation()
}

// UpsertEntry records a status for one habit on one day, keyed by
// (habitID, date). A done status grants XP and re-derives badges.
func (s *Store) UpsertEntry(habitID, date string, status internal.Status, note *string) internal.HabitEntry {
	now := s.now()
	s.mu.Lock()
	idx := s.entryIndexLocked(habitID, date)
	if idx == -1 {
		e := internal.HabitEntry{
			ID:        uuid.NewString(),
			HabitID:   habitID,
			Date:      date,
			Status:    status,
			Note:      "",
			UpdatedAt: now,
		}
		if note != nil {
			e.Note = *note
		}
		s.snap.Entries = append(s.snap.Entries, e)
		idx = len(s.snap.Entries) - 1
	} else {
		e := &s.snap.Entries[idx]
		e.Status = status
		if note != nil {
			e.Note = *note
		}
		e.UpdatedAt = now
	}
	if status == internal.StatusDone {
		s.snap.Rewards.XP += habit.XPPerCompletion
		s.snap.Rewards.Badges = habit.EvaluateBadges(s.snap.Habits, s.snap.Entries, now)
		if s.snap.Rewards.Badges == nil {
			s.snap.Rewards.Badges = []string{}
		}
	}
	entry := s.snap.Entries[idx]
	s.mu.Unlock()
	s.afterMutation()
	return entry
}

func (s *Store) RemoveEntry(habitID, date string) {
	s.mu.Lock()
	entries := s.snap.Entries[:0]
	for _, e := range s.snap.Entries {
		if !(e.HabitID == habitID && e.Date == date) {
			entries = append(entries, e)
		}
	}
	s.snap.Entries = entries
	s.mu.Unlock()
	s.afterMutation()
}

// UpdateEntryNote sets the note for (habitID, date), creating a missed
// entry when none exists yet.
func (s *Store) UpdateEntryNote(habitID, date, note string) internal.HabitEntry {
	now := s.now()
	s.mu.Lock()
	idx := s.entryIndexLocked(habitID, date)
	if idx == -1 {
		s.snap.Entries = append(s.snap.Entries, internal.HabitEntry{
			ID:        uuid.NewString(),
			HabitID:   habitID,
			Date:      date,
			Status:    internal.StatusMissed,
			Note:      note,
			UpdatedAt: now,
		})
		idx = len(s.snap.Entries) - 1
	} else {
		s.snap.Entries[idx].Note = note
		s.snap.Entries[idx].UpdatedAt = now
	}
	entry := s.snap.Entries[idx]
	s.mu.Unlock()
	s.afterMutation()
	return entry
}

func (s *Store) AddCategory(name, color string) internal.HabitCategory {
	cat := internal.HabitCategory{ID: uuid.NewString(), Name: name, Color: color}
	s.mu.Lock()
	s.snap.Categories = append(s.snap.Categories, cat)
	s.mu.Unlock()
	s.afterMutation()
	return cat
}

// DeleteCategory removes a category. Deletion is rejected while any habit
// still references the category, so no dangling references are created.
func (s *Store) DeleteCategory(id string) error {
	s.mu.Lock()
	for _, h := range s.snap.Habits {
		if h.CategoryID == id {
			s.mu.Unlock()
			return fmt.Errorf("%w: category %s is referenced by habit %s", internal.ErrValidation, id, h.ID)
		}
	}
	cats := s.snap.Categories[:0]
	for _, c := range s.snap.Categories {
		if c.ID != id {
			cats = append(cats, c)
		}
	}
	s.snap.Categories = cats
	s.mu.Unlock()
	s.afterMutation()
	return nil
}

// Export serializes the current snapshot for user-facing backup.
func (s *Store) Export() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot.ExportJSON(s.snap)
}

// Import replaces the whole snapshot with validated exported text. Invalid
// input is an explicit error, not a silent default.
func (s *Store) Import(text string) error {
	snap, err := snapshot.ImportJSON(text)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.afterMutation()
	return nil
}

func (s *Store) entryIndexLocked(habitID, date string) int {
	for i := range s.snap.Entries {
		if s.snap.Entries[i].HabitID == habitID && s.snap.Entries[i].Date == date {
			return i
		}
	}
	return -1
}

func normalizeWeeklyDays(days []int) []int {
	seen := make(map[int]bool, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

func copySnapshot(snap *internal.Snapshot) internal.Snapshot {
	out := *snap
	out.Habits = append([]internal.Habit{}, snap.Habits...)
	out.Categories = append([]internal.HabitCategory{}, snap.Categories...)
	out.Entries = append([]internal.HabitEntry{}, snap.Entries...)
	out.Rewards.Badges = append([]string{}, snap.Rewards.Badges...)
	return out
}
