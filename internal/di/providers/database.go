package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/stackit/stackit-server/internal/config"
	"github.com/stackit/stackit-server/internal/logger"
	"github.com/stackit/stackit-server/internal/store"
	"github.com/stackit/stackit-server/internal/store/sqlite"
)

// StoreHandle wraps the repository with shutdown capability.
type StoreHandle struct {
	store.Repository
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured store backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	var (
		repo   store.Repository
		dbPath string
		err    error
	)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		dbPath = filepath.Join(cfg.Storage.DataPath, "stackit.db")
		repo, err = sqlite.Open(dbPath, log.Logger)
	case config.BackendBadger:
		dbPath = filepath.Join(cfg.Storage.DataPath, "db")
		repo, err = store.New(dbPath, log.Logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "backend", repo.Backend(), "path", dbPath)

	return &StoreHandle{Repository: repo}, nil
}
