package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/legal-lab/pkg/repository"
)

type repo struct {
	db       *sql.DB
	fallback string
	logger   *slog.Logger
}

// New creates a Postgres-backed System over the user_credentials table.
func New(db *sql.DB, fallback string, logger *slog.Logger) System {
	return &repo{
		db:       db,
		fallback: strings.TrimSpace(fallback),
		logger:   logger.With("system", "credentials"),
	}
}

func (r *repo) Save(ctx context.Context, userID, credential string) error {
	if userID == "" {
		return ErrAnonymous
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrEmptyValue
	}

	q := `
		INSERT INTO user_credentials (user_id, credential)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET credential = EXCLUDED.credential, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, q, userID, credential); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	r.logger.Info("credential saved", "user_id", userID)
	return nil
}

func (r *repo) Find(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", ErrAnonymous
	}

	q := `SELECT credential FROM user_credentials WHERE user_id = $1`
	credential, err := repository.QueryOne(ctx, r.db, q, []any{userID}, func(s repository.Scanner) (string, error) {
		var v string
		err := s.Scan(&v)
		return v, err
	})
	if err != nil {
		return "", repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return credential, nil
}

func (r *repo) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrAnonymous
	}

	err := repository.ExecExpectOne(ctx, r.db, `DELETE FROM user_credentials WHERE user_id = $1`, userID)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	r.logger.Info("credential deleted", "user_id", userID)
	return nil
}

func (r *repo) Saved(ctx context.Context, userID string) string {
	if userID == "" {
		return r.fallback
	}

	credential, err := r.Find(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("saved credential lookup failed", "user_id", userID, "error", err)
		}
		return r.fallback
	}
	return credential
}

// static serves only the service default; used when no identity provider is configured.
type static struct {
	fallback string
}

// Static returns a System without per-user storage. Saves are rejected with ErrAnonymous.
func Static(fallback string) System {
	return static{fallback: strings.TrimSpace(fallback)}
}

func (s static) Save(context.Context, string, string) error   { return ErrAnonymous }
func (s static) Find(context.Context, string) (string, error) { return "", ErrNotFound }
func (s static) Delete(context.Context, string) error         { return ErrAnonymous }
func (s static) Saved(context.Context, string) string         { return s.fallback }
