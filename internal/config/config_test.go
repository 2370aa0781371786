package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadFrom_MissingBaseYieldsDefaults(t *testing.T) {
	t.Setenv(EnvServiceEnv, "")

	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Analysis.Model != "gemini-2.5-flash" {
		t.Errorf("Analysis.Model = %q", cfg.Analysis.Model)
	}
	if cfg.Analysis.MaxUploadSizeBytes() != 25*1024*1024 {
		t.Errorf("MaxUploadSizeBytes = %d, want %d", cfg.Analysis.MaxUploadSizeBytes(), 25*1024*1024)
	}
	if cfg.Analysis.TimeoutDuration() != 120*time.Second {
		t.Errorf("Analysis timeout = %v, want 120s", cfg.Analysis.TimeoutDuration())
	}
	if cfg.Storage.Backend != StorageFilesystem {
		t.Errorf("Storage.Backend = %q", cfg.Storage.Backend)
	}
	if cfg.Cases.Backend != CasesPostgres {
		t.Errorf("Cases.Backend = %q", cfg.Cases.Backend)
	}
	if cfg.Auth.Enabled {
		t.Error("Auth.Enabled should default to false")
	}
}

func TestLoadFrom_Overlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BaseConfigFile, `
shutdown_timeout = "15s"

[server]
port = 8081

[analysis]
model = "base-model"
`)
	writeFile(t, dir, "config.test.toml", `
shutdown_timeout = "60s"

[server]
port = 9090
`)
	t.Setenv(EnvServiceEnv, "test")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if cfg.ShutdownTimeout != "60s" {
		t.Errorf("ShutdownTimeout = %q, want 60s", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Analysis.Model != "base-model" {
		t.Errorf("Analysis.Model = %q, want base-model", cfg.Analysis.Model)
	}
}

func TestLoadFrom_InvalidToml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, BaseConfigFile, "[server\nport = ")
	t.Setenv(EnvServiceEnv, "")

	if _, err := LoadFrom(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFinalize_EnvOverrides(t *testing.T) {
	t.Setenv(EnvServerPort, "7000")
	t.Setenv(EnvAnalysisMaxUploadSize, "1MB")
	t.Setenv(EnvAnalysisDefaultCredential, "fallback-key")
	t.Setenv(EnvCasesBackend, CasesStorage)
	t.Setenv(EnvStorageMinioUseSSL, "true")

	cfg := &Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000", cfg.Server.Port)
	}
	if cfg.Analysis.MaxUploadSizeBytes() != 1024*1024 {
		t.Errorf("MaxUploadSizeBytes = %d", cfg.Analysis.MaxUploadSizeBytes())
	}
	if cfg.Analysis.DefaultCredential != "fallback-key" {
		t.Errorf("DefaultCredential = %q", cfg.Analysis.DefaultCredential)
	}
	if cfg.Cases.Backend != CasesStorage {
		t.Errorf("Cases.Backend = %q", cfg.Cases.Backend)
	}
	if !cfg.Storage.Minio.UseSSL {
		t.Error("Storage.Minio.UseSSL should be true")
	}
}

func TestFinalize_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"shutdown timeout", func(c *Config) { c.ShutdownTimeout = "soon" }},
		{"upload size", func(c *Config) { c.Analysis.MaxUploadSize = "lots" }},
		{"analysis timeout", func(c *Config) { c.Analysis.Timeout = "-1s" }},
		{"storage backend", func(c *Config) { c.Storage.Backend = "tape" }},
		{"minio endpoint", func(c *Config) { c.Storage.Backend = StorageMinio }},
		{"cases backend", func(c *Config) { c.Cases.Backend = "memory" }},
		{"auth secret", func(c *Config) { c.Auth.Enabled = true; c.Auth.Secret = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			tt.mutate(cfg)
			if err := cfg.Finalize(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAnalysisConfig_Merge(t *testing.T) {
	base := &AnalysisConfig{Model: "a", MaxUploadSize: "25MB"}
	base.Merge(&AnalysisConfig{Model: "b", MaxUploadSize: "2MB", RateBurst: 9})

	if base.Model != "b" {
		t.Errorf("Model = %q, want b", base.Model)
	}
	if base.MaxUploadSize != "2MB" {
		t.Errorf("MaxUploadSize = %q, want 2MB", base.MaxUploadSize)
	}
	if base.RateBurst != 9 {
		t.Errorf("RateBurst = %d, want 9", base.RateBurst)
	}
}

func TestCORSConfig_MergeKeepsMaxAge(t *testing.T) {
	base := &CORSConfig{Origins: []string{"http://a.example"}, MaxAge: 600}
	base.Merge(&CORSConfig{Enabled: true})

	if !base.Enabled {
		t.Error("Enabled = false, want true")
	}
	if base.MaxAge != 600 {
		t.Errorf("MaxAge = %d, want 600", base.MaxAge)
	}
	if len(base.Origins) != 1 {
		t.Errorf("Origins = %v, want base origins kept", base.Origins)
	}
}

func TestCORSConfig_Finalize(t *testing.T) {
	t.Setenv(EnvCORSOrigins, " http://a.example, ,http://b.example ")
	cfg := &CORSConfig{Enabled: true}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "http://b.example" {
		t.Errorf("Origins = %v", cfg.Origins)
	}

	t.Setenv(EnvCORSOrigins, "*")
	t.Setenv(EnvCORSAllowCredentials, "true")
	if err := (&CORSConfig{Enabled: true}).Finalize(); err == nil {
		t.Error("Finalize() = nil, want error for credentialed wildcard")
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := &DatabaseConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	dsn := cfg.DSN()
	want := "host=localhost port=5432 dbname=legal_lab user=legal_lab password= sslmode=disable"
	if dsn != want {
		t.Errorf("DSN() = %q, want %q", dsn, want)
	}
}
