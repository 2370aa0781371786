package config

import (
	"errors"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const (
	EnvCORSEnabled          = "CORS_ENABLED"
	EnvCORSOrigins          = "CORS_ORIGINS"
	EnvCORSAllowedMethods   = "CORS_ALLOWED_METHODS"
	EnvCORSAllowedHeaders   = "CORS_ALLOWED_HEADERS"
	EnvCORSAllowCredentials = "CORS_ALLOW_CREDENTIALS"
	EnvCORSMaxAge           = "CORS_MAX_AGE"
)

// CORSConfig controls cross-origin access to the API. Browser clients send
// the analysis credential in X-Analysis-Credential, so it is allowed by default.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// Finalize applies defaults, loads environment overrides, and validates the CORS configuration.
func (c *CORSConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies the overlay. Booleans always follow the overlay; lists and
// max_age only when the overlay sets them.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	c.Origins = lo.Ternary(overlay.Origins != nil, overlay.Origins, c.Origins)
	c.AllowedMethods = lo.Ternary(overlay.AllowedMethods != nil, overlay.AllowedMethods, c.AllowedMethods)
	c.AllowedHeaders = lo.Ternary(overlay.AllowedHeaders != nil, overlay.AllowedHeaders, c.AllowedHeaders)
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func (c *CORSConfig) loadDefaults() {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type", "Authorization", "X-Analysis-Credential"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}
}

func (c *CORSConfig) loadEnv() {
	if b, err := strconv.ParseBool(os.Getenv(EnvCORSEnabled)); err == nil {
		c.Enabled = b
	}
	if b, err := strconv.ParseBool(os.Getenv(EnvCORSAllowCredentials)); err == nil {
		c.AllowCredentials = b
	}
	if n, err := strconv.Atoi(os.Getenv(EnvCORSMaxAge)); err == nil {
		c.MaxAge = n
	}

	for env, dst := range map[string]*[]string{
		EnvCORSOrigins:        &c.Origins,
		EnvCORSAllowedMethods: &c.AllowedMethods,
		EnvCORSAllowedHeaders: &c.AllowedHeaders,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = splitList(v)
		}
	}
}

// validate rejects credentialed wildcard origins, which browsers refuse.
func (c *CORSConfig) validate() error {
	if c.Enabled && c.AllowCredentials && slices.Contains(c.Origins, "*") {
		return errors.New("cors: allow_credentials cannot be combined with origin \"*\"")
	}
	return nil
}

func splitList(v string) []string {
	return lo.FilterMap(strings.Split(v, ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
}
