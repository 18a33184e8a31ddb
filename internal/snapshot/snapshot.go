// Package snapshot defines the persisted/transferred snapshot schema: its
// validation, the documented default, and the JSON export/import round trip.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/yourname/habittracker/internal"
)

var validate = validator.New()

// Validate checks a snapshot against the v1 schema: version literal,
// frequency and status literals, weekly days within [0,6], monthly day
// within [1,31] or nil, and YYYY-MM-DD entry dates.
func Validate(snap *internal.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", internal.ErrValidation)
	}
	if err := validate.Struct(snap); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrValidation, err)
	}
	return nil
}

// ValidatePayload applies the same field rules to a sync payload.
func ValidatePayload(p *internal.SyncPayload) error {
	if p == nil {
		return fmt.Errorf("%w: nil payload", internal.ErrValidation)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrValidation, err)
	}
	return nil
}

// Default returns the snapshot used when nothing valid is persisted:
// no habits or entries, four seed categories, zero rewards.
func Default() *internal.Snapshot {
	return &internal.Snapshot{
		Version: 1,
		Habits:  []internal.Habit{},
		Categories: []internal.HabitCategory{
			{ID: "health", Name: "Health", Color: "#22c55e"},
			{ID: "study", Name: "Study", Color: "#3b82f6"},
			{ID: "exercise", Name: "Exercise", Color: "#f97316"},
			{ID: "mind", Name: "Mind", Color: "#a855f7"},
		},
		Entries: []internal.HabitEntry{},
		Rewards: internal.Rewards{XP: 0, Badges: []string{}},
	}
}

// ExportJSON serializes a snapshot for user-facing export.
func ExportJSON(snap *internal.Snapshot) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ImportJSON parses and validates exported text. Unlike Load's silent
// fallback, a user-triggered import surfaces validation failure explicitly.
func ImportJSON(text string) (*internal.Snapshot, error) {
	var snap internal.Snapshot
	if err := json.Unmarshal([]byte(text), &snap); err != nil {
		return nil, fmt.Errorf("%w: invalid import format: %v", internal.ErrValidation, err)
	}
	if err := Validate(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
