package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/JaimeStill/legal-lab/internal/config"
)

// System defines the blob storage operations shared by every backend.
type System interface {
	// Init prepares the backend: creates the base directory or ensures the bucket exists.
	Init(ctx context.Context) error

	// Store saves data at key, overwriting any existing value.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the data stored at key or ErrNotFound.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Validate reports whether key exists.
	Validate(ctx context.Context, key string) (bool, error)

	// List returns every key beginning with prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// New creates the System selected by cfg.Backend.
func New(cfg *config.StorageConfig, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case config.StorageFilesystem, "":
		return NewFilesystem(cfg.BasePath, logger)
	case config.StorageMinio:
		return NewMinio(&cfg.Minio, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// cleanKey normalizes a slash-separated key and rejects traversal.
func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", ErrInvalidKey
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}

	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
