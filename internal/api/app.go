package api

import (
	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/config"
	"github.com/yourname/habittracker/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Users() storage.UserRepository
	Sessions() storage.SessionRepository
	Snapshots() storage.SnapshotRepository
	Config() *config.Config
}
