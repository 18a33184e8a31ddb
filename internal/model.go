package internal

import "time"

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

type Status string

const (
	StatusNone    Status = "none"
	StatusDone    Status = "done"
	StatusMissed  Status = "missed"
	StatusSkipped Status = "skipped"
)

const (
	BadgeStreak7      = "streak_7"
	BadgeStreak30     = "streak_30"
	BadgeStreak100    = "streak_100"
	BadgePerfectWeek  = "perfect_week"
	BadgePerfectMonth = "perfect_month"
)

type HabitCategory struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
}

type Habit struct {
	ID           string    `json:"id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Description  string    `json:"description"`
	CategoryID   string    `json:"categoryId" validate:"required"`
	Frequency    Frequency `json:"frequency" validate:"oneof=daily weekly monthly"`
	WeeklyDays   []int     `json:"weeklyDays" validate:"dive,gte=0,lte=6"` // 0 = Sunday
	MonthlyDay   *int      `json:"monthlyDay" validate:"omitempty,gte=1,lte=31"`
	Color        string    `json:"color" validate:"required"`
	ReminderTime *string   `json:"reminderTime"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HabitEntry records an explicit action for one habit on one calendar day.
// At most one entry exists per (HabitID, Date) pair; absence of an entry on
// a due day is resolved as missed, never stored.
type HabitEntry struct {
	ID        string    `json:"id" validate:"required"`
	HabitID   string    `json:"habitId" validate:"required"`
	Date      string    `json:"date" validate:"datetime=2006-01-02"`
	Status    Status    `json:"status" validate:"oneof=done missed skipped"`
	Note      string    `json:"note"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Rewards struct {
	XP     int      `json:"xp" validate:"gte=0"`
	Badges []string `json:"badges" validate:"dive,oneof=streak_7 streak_30 streak_100 perfect_week perfect_month"`
}

// Snapshot is the unit of local persistence and of sync transfer.
type Snapshot struct {
	Version    int             `json:"version" validate:"eq=1"`
	Habits     []Habit         `json:"habits" validate:"dive"`
	Categories []HabitCategory `json:"categories" validate:"dive"`
	Entries    []HabitEntry    `json:"entries" validate:"dive"`
	Rewards    Rewards         `json:"rewards"`
}

// SyncPayload is the over-the-wire subset of a snapshot. Rewards stay local.
type SyncPayload struct {
	Categories []HabitCategory `json:"categories" validate:"dive"`
	Habits     []Habit         `json:"habits" validate:"dive"`
	Entries    []HabitEntry    `json:"entries" validate:"dive"`
}

// MonthlySummary is derived, never persisted.
type MonthlySummary struct {
	Month          string  `json:"month"`
	CompletionRate int     `json:"completionRate"`
	BestDay        *string `json:"bestDay"`
	WorstDay       *string `json:"worstDay"`
	TotalDone      int     `json:"totalDone"`
	TotalMissed    int     `json:"totalMissed"`
	TotalSkipped   int     `json:"totalSkipped"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	TokenHash string    `json:"token_hash"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
