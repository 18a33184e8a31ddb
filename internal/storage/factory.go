package storage

import (
	"path/filepath"

	"github.com/yourname/habittracker/internal"
)

// Repositories bundles the three repository views of one backing store.
type Repositories struct {
	Users     UserRepository
	Sessions  SessionRepository
	Snapshots SnapshotRepository

	closer func() error
}

// Close flushes and releases the backing store.
func (r *Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

func NewFileRepositories(dataDir string, logger internal.Logger) (*Repositories, error) {
	s, err := NewFileStorage(
		filepath.Join(dataDir, "users.json"),
		filepath.Join(dataDir, "sessions.json"),
		filepath.Join(dataDir, "snapshots.json"),
		logger,
	)
	if err != nil {
		return nil, err
	}
	return &Repositories{Users: s, Sessions: s, Snapshots: s, closer: s.Close}, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (*Repositories, error) {
	s, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return nil, err
	}
	closer := func() error {
		s.Close()
		return nil
	}
	return &Repositories{Users: s, Sessions: s, Snapshots: s, closer: closer}, nil
}
