package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvStorageBackend        = "STORAGE_BACKEND"
	EnvStorageBasePath       = "STORAGE_BASE_PATH"
	EnvStorageMinioEndpoint  = "STORAGE_MINIO_ENDPOINT"
	EnvStorageMinioAccessKey = "STORAGE_MINIO_ACCESS_KEY"
	EnvStorageMinioSecretKey = "STORAGE_MINIO_SECRET_KEY"
	EnvStorageMinioBucket    = "STORAGE_MINIO_BUCKET"
	EnvStorageMinioUseSSL    = "STORAGE_MINIO_USE_SSL"
)

// Storage backends.
const (
	StorageFilesystem = "filesystem"
	StorageMinio      = "minio"
)

// StorageConfig contains blob storage configuration.
type StorageConfig struct {
	// Backend selects the implementation: "filesystem" or "minio".
	Backend string `toml:"backend"`

	// BasePath is the root directory for filesystem storage.
	// Default: ".data/blobs"
	BasePath string `toml:"base_path"`

	Minio MinioConfig `toml:"minio"`
}

// MinioConfig contains S3-compatible object storage settings.
type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *StorageConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *StorageConfig) Merge(overlay *StorageConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.Minio.Endpoint != "" {
		c.Minio.Endpoint = overlay.Minio.Endpoint
	}
	if overlay.Minio.AccessKey != "" {
		c.Minio.AccessKey = overlay.Minio.AccessKey
	}
	if overlay.Minio.SecretKey != "" {
		c.Minio.SecretKey = overlay.Minio.SecretKey
	}
	if overlay.Minio.Bucket != "" {
		c.Minio.Bucket = overlay.Minio.Bucket
	}
	if overlay.Minio.UseSSL {
		c.Minio.UseSSL = true
	}
}

func (c *StorageConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = StorageFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = ".data/blobs"
	}
	if c.Minio.Bucket == "" {
		c.Minio.Bucket = "legal-lab"
	}
}

func (c *StorageConfig) loadEnv() {
	if v := os.Getenv(EnvStorageBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvStorageBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvStorageMinioEndpoint); v != "" {
		c.Minio.Endpoint = v
	}
	if v := os.Getenv(EnvStorageMinioAccessKey); v != "" {
		c.Minio.AccessKey = v
	}
	if v := os.Getenv(EnvStorageMinioSecretKey); v != "" {
		c.Minio.SecretKey = v
	}
	if v := os.Getenv(EnvStorageMinioBucket); v != "" {
		c.Minio.Bucket = v
	}
	if v := os.Getenv(EnvStorageMinioUseSSL); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Minio.UseSSL = b
		}
	}
}

func (c *StorageConfig) validate() error {
	switch c.Backend {
	case StorageFilesystem:
		if c.BasePath == "" {
			return fmt.Errorf("base_path required")
		}
	case StorageMinio:
		if c.Minio.Endpoint == "" {
			return fmt.Errorf("minio.endpoint required")
		}
		if c.Minio.Bucket == "" {
			return fmt.Errorf("minio.bucket required")
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be filesystem or minio)", c.Backend)
	}
	return nil
}
