package main

import (
	"log"
	"os"

	"github.com/yourname/habittracker/internal"
	"github.com/yourname/habittracker/internal/api"
	"github.com/yourname/habittracker/internal/config"
	"github.com/yourname/habittracker/internal/storage"
)

type application struct {
	logger internal.Logger
	repos  *storage.Repositories
	cfg    *config.Config
}

func (a *application) Logger() internal.Logger               { return a.logger }
func (a *application) Users() storage.UserRepository         { return a.repos.Users }
func (a *application) Sessions() storage.SessionRepository   { return a.repos.Sessions }
func (a *application) Snapshots() storage.SnapshotRepository { return a.repos.Snapshots }
func (a *application) Config() *config.Config                { return a.cfg }

var _ api.App = (*application)(nil)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	var repos *storage.Repositories
	switch cfg.StorageBackend {
	case "postgres":
		repos, err = storage.NewPostgresRepositories(cfg.PostgresDSN, logger)
	default:
		if mkErr := os.MkdirAll(cfg.DataDir, 0o755); mkErr != nil {
			logger.Fatalf("failed to create data dir: %v", mkErr)
		}
		repos, err = storage.NewFileRepositories(cfg.DataDir, logger)
	}
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			logger.Errorf("failed to close storage: %v", err)
		}
	}()

	app := &application{logger: logger, repos: repos, cfg: cfg}
	r := api.NewRouter(app)

	logger.Infof("Server running on %s (backend=%s)", cfg.ListenAddr, cfg.StorageBackend)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
