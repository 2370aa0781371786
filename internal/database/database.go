// Package database opens the PostgreSQL connection pool and applies the
// embedded schema migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/legal-lab/internal/config"
)

// System owns the *sql.DB handle for the service.
type System struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens a pgx-backed pool configured from cfg. The connection is verified by Start.
func New(cfg *config.DatabaseConfig, logger *slog.Logger) (*System, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &System{
		db:     db,
		logger: logger.With("system", "database", "host", cfg.Host, "name", cfg.Name),
	}, nil
}

// Connection returns the underlying pool.
func (s *System) Connection() *sql.DB {
	return s.db
}

// Start pings the database within timeout.
func (s *System) Start(ctx context.Context, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	s.logger.Info("database connection established")
	return nil
}

// Close releases the pool.
func (s *System) Close() error {
	s.logger.Info("closing database connection")
	return s.db.Close()
}
