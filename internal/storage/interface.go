package storage

import (
	"context"
	"errors"
	"time"

	"github.com/yourname/habittracker/internal"
)

var (
	ErrNotFound   = errors.New("storage: not found")
	ErrEmailTaken = errors.New("storage: email already registered")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *internal.User) error
	GetUserByEmail(ctx context.Context, email string) (*internal.User, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *internal.Session) error
	GetUserBySession(ctx context.Context, tokenHash string, now time.Time) (*internal.User, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// SnapshotRepository holds one sync payload per user under a single-writer
// assumption: ReplacePayload discards whatever was stored before.
type SnapshotRepository interface {
	GetPayload(ctx context.Context, userID string) (*internal.SyncPayload, error)
	ReplacePayload(ctx context.Context, userID string, payload *internal.SyncPayload) error
}
