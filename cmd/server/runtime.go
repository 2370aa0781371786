package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/legal-lab/internal/config"
	"github.com/JaimeStill/legal-lab/internal/database"
	"github.com/JaimeStill/legal-lab/internal/identity"
	"github.com/JaimeStill/legal-lab/internal/storage"
	"github.com/JaimeStill/legal-lab/pkg/logging"
	"github.com/JaimeStill/legal-lab/pkg/pagination"
)

// Runtime holds the infrastructure shared by the domain systems.
// Database and Storage are nil when the configuration does not need them.
type Runtime struct {
	Logger     *slog.Logger
	Database   *database.System
	Storage    storage.System
	Identity   *identity.Authority
	Pagination pagination.Config
	cfg        *config.Config
}

func NewRuntime(cfg *config.Config) (*Runtime, error) {
	logger := logging.New(&cfg.Logging)

	rt := &Runtime{
		Logger:     logger,
		Identity:   identity.New(&cfg.Auth, logger),
		Pagination: cfg.Pagination,
		cfg:        cfg,
	}

	// Without identities nothing is saved per user, so neither store is opened.
	if !cfg.Auth.Enabled {
		logger.Info("authentication disabled, case persistence and saved credentials are off")
		return rt, nil
	}

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	rt.Database = db

	if cfg.Cases.Backend == config.CasesStorage {
		blobs, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		rt.Storage = blobs
	}

	return rt, nil
}

// Start verifies connectivity and applies pending migrations.
func (r *Runtime) Start(ctx context.Context) error {
	if r.Database != nil {
		if err := r.Database.Start(ctx, r.cfg.Database.ConnTimeoutDuration()); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}

		version, err := database.Migrate(r.Database.Connection(), database.Up)
		if err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		r.Logger.Info("schema up to date", "version", version)
	}

	if r.Storage != nil {
		if err := r.Storage.Init(ctx); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	return nil
}

// Close releases the database pool.
func (r *Runtime) Close() error {
	if r.Database == nil {
		return nil
	}
	return r.Database.Close()
}
