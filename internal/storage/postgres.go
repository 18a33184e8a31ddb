package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourname/habittracker/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() {
	p.pool.Close()
}

// --- UserRepository ---

func (p *PostgresStorage) CreateUser(ctx context.Context, user *internal.User) error {
	tag, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (email) DO NOTHING`,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmailTaken
	}
	return nil
}

func (p *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
	var u internal.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to query user: %v", err)
		return nil, err
	}
	return &u, nil
}

// --- SessionRepository ---

func (p *PostgresStorage) CreateSession(ctx context.Context, session *internal.Session) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`,
		session.TokenHash, session.UserID, session.ExpiresAt)
	if err != nil {
		p.logger.Errorf("failed to insert session: %v", err)
	}
	return err
}

func (p *PostgresStorage) GetUserBySession(ctx context.Context, tokenHash string, now time.Time) (*internal.User, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT u.id, u.email, u.password_hash, u.created_at
		   FROM sessions s JOIN users u ON u.id = s.user_id
		  WHERE s.token_hash = $1 AND s.expires_at > $2`,
		tokenHash, now)
	var u internal.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to query session: %v", err)
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		p.logger.Errorf("failed to delete session: %v", err)
	}
	return err
}

// --- SnapshotRepository ---

func (p *PostgresStorage) GetPayload(ctx context.Context, userID string) (*internal.SyncPayload, error) {
	payload := emptyPayload()

	rows, err := p.pool.Query(ctx,
		`SELECT id, name, color FROM categories WHERE user_id = $1 ORDER BY position ASC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query categories: %v", err)
		return nil, err
	}
	for rows.Next() {
		var c internal.HabitCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			rows.Close()
			return nil, err
		}
		payload.Categories = append(payload.Categories, c)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	rows, err = p.pool.Query(ctx,
		`SELECT id, name, description, category_id, frequency, weekly_days, monthly_day, color, reminder_time, created_at, updated_at
		   FROM habits WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query habits: %v", err)
		return nil, err
	}
	for rows.Next() {
		var h internal.Habit
		var weeklyDays string
		if err := rows.Scan(&h.ID, &h.Name, &h.Description, &h.CategoryID, &h.Frequency,
			&weeklyDays, &h.MonthlyDay, &h.Color, &h.ReminderTime, &h.CreatedAt, &h.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		if err := json.Unmarshal([]byte(weeklyDays), &h.WeeklyDays); err != nil {
			h.WeeklyDays = []int{}
		}
		payload.Habits = append(payload.Habits, h)
	}
	rows.Close()
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	rows, err = p.pool.Query(ctx,
		`SELECT id, habit_id, date, status, note, updated_at
		   FROM entries WHERE user_id = $1 ORDER BY date ASC, updated_at ASC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query entries: %v", err)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e internal.HabitEntry
		if err := rows.Scan(&e.ID, &e.HabitID, &e.Date, &e.Status, &e.Note, &e.UpdatedAt); err != nil {
			return nil, err
		}
		payload.Entries = append(payload.Entries, e)
	}
	return payload, rows.Err()
}

// ReplacePayload discards the user's stored snapshot and writes the pushed
// one inside a single transaction. Client ids are preserved so a pull
// returns exactly what was pushed.
func (p *PostgresStorage) ReplacePayload(ctx context.Context, userID string, payload *internal.SyncPayload) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"entries", "habits", "categories"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
			p.logger.Errorf("failed to clear %s: %v", table, err)
			return err
		}
	}

	for i, c := range payload.Categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO categories (id, user_id, name, color, position) VALUES ($1, $2, $3, $4, $5)`,
			c.ID, userID, c.Name, c.Color, i); err != nil {
			p.logger.Errorf("failed to insert category: %v", err)
			return err
		}
	}

	for _, h := range payload.Habits {
		weeklyDays, err := json.Marshal(h.WeeklyDays)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO habits (id, user_id, name, description, category_id, frequency, weekly_days, monthly_day, color, reminder_time, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			h.ID, userID, h.Name, h.Description, h.CategoryID, h.Frequency,
			string(weeklyDays), h.MonthlyDay, h.Color, h.ReminderTime, h.CreatedAt, h.UpdatedAt); err != nil {
			p.logger.Errorf("failed to insert habit: %v", err)
			return err
		}
	}

	for _, e := range payload.Entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO entries (id, user_id, habit_id, date, status, note, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.ID, userID, e.HabitID, e.Date, e.Status, e.Note, e.UpdatedAt); err != nil {
			p.logger.Errorf("failed to insert entry: %v", err)
			return err
		}
	}

	return tx.Commit(ctx)
}

// --- Compile-time assertions ---
var _ UserRepository = (*PostgresStorage)(nil)
var _ SessionRepository = (*PostgresStorage)(nil)
var _ SnapshotRepository = (*PostgresStorage)(nil)
