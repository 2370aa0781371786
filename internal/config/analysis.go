package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/docker/go-units"
)

const (
	EnvAnalysisBaseURL           = "ANALYSIS_BASE_URL"
	EnvAnalysisModel             = "ANALYSIS_MODEL"
	EnvAnalysisTimeout           = "ANALYSIS_TIMEOUT"
	EnvAnalysisMaxUploadSize     = "ANALYSIS_MAX_UPLOAD_SIZE"
	EnvAnalysisMaxTokens         = "ANALYSIS_MAX_TOKENS"
	EnvAnalysisRateLimit         = "ANALYSIS_RATE_LIMIT"
	EnvAnalysisRateBurst         = "ANALYSIS_RATE_BURST"
	EnvAnalysisDefaultCredential = "ANALYSIS_DEFAULT_CREDENTIAL"
)

// AnalysisConfig contains settings for the AI analysis provider and upload gate.
type AnalysisConfig struct {
	// BaseURL of an OpenAI-compatible chat completions API.
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`

	// Timeout bounds a single analysis call. There are no retries.
	Timeout string `toml:"timeout"`

	// MaxUploadSize is a human-readable size ("25MB") interpreted in binary units.
	MaxUploadSize    string `toml:"max_upload_size"`
	maxUploadSizeVal int64

	MaxTokens int `toml:"max_tokens"`

	// RateLimit is the sustained number of analysis requests per second across the service.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`

	// DefaultCredential is used as the saved credential when a user has none.
	DefaultCredential string `toml:"default_credential"`
}

// MaxUploadSizeBytes returns the parsed upload limit. Valid after Finalize.
func (c *AnalysisConfig) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

func (c *AnalysisConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the analysis configuration.
func (c *AnalysisConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *AnalysisConfig) Merge(overlay *AnalysisConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if size, err := units.RAMInBytes(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.RateLimit != 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.RateBurst != 0 {
		c.RateBurst = overlay.RateBurst
	}
	if overlay.DefaultCredential != "" {
		c.DefaultCredential = overlay.DefaultCredential
	}
}

func (c *AnalysisConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Timeout == "" {
		c.Timeout = "120s"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "25MB"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.RateLimit == 0 {
		c.RateLimit = 2
	}
	if c.RateBurst == 0 {
		c.RateBurst = 5
	}
}

func (c *AnalysisConfig) loadEnv() {
	if v := os.Getenv(EnvAnalysisBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvAnalysisModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvAnalysisTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvAnalysisMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAnalysisMaxTokens); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	if v := os.Getenv(EnvAnalysisRateLimit); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = f
		}
	}
	if v := os.Getenv(EnvAnalysisRateBurst); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv(EnvAnalysisDefaultCredential); v != "" {
		c.DefaultCredential = v
	}
}

func (c *AnalysisConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %q", c.Timeout)
	}

	size, err := units.RAMInBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive")
	}
	if c.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be positive")
	}
	return nil
}
