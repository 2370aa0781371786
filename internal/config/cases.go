package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvCasesBackend        = "CASES_BACKEND"
	EnvCasesPersistTimeout = "CASES_PERSIST_TIMEOUT"
)

// Case record backends.
const (
	CasesPostgres = "postgres"
	CasesStorage  = "storage"
)

// CasesConfig selects where case metadata records are written.
type CasesConfig struct {
	// Backend is "postgres" (legal_cases table) or "storage" (one JSON document per record).
	Backend string `toml:"backend"`

	// PersistTimeout bounds each detached persistence task.
	PersistTimeout string `toml:"persist_timeout"`
}

func (c *CasesConfig) PersistTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.PersistTimeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the cases configuration.
func (c *CasesConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *CasesConfig) Merge(overlay *CasesConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.PersistTimeout != "" {
		c.PersistTimeout = overlay.PersistTimeout
	}
}

func (c *CasesConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = CasesPostgres
	}
	if c.PersistTimeout == "" {
		c.PersistTimeout = "10s"
	}
}

func (c *CasesConfig) loadEnv() {
	if v := os.Getenv(EnvCasesBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvCasesPersistTimeout); v != "" {
		c.PersistTimeout = v
	}
}

func (c *CasesConfig) validate() error {
	if c.Backend != CasesPostgres && c.Backend != CasesStorage {
		return fmt.Errorf("invalid backend: %s (must be postgres or storage)", c.Backend)
	}
	if d, err := time.ParseDuration(c.PersistTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid persist_timeout: %q", c.PersistTimeout)
	}
	return nil
}
