// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// withoutConfigFile points CONFIG_PATH at a missing file and runs in an
// empty directory so that no config.yaml is picked up.
func withoutConfigFile(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want 10s", cfg.Server.RequestTimeout)
	}
	if cfg.Recommend.HistoryWindow != 90*24*time.Hour {
		t.Errorf("Recommend.HistoryWindow = %v, want 90 days", cfg.Recommend.HistoryWindow)
	}
	if cfg.Recommend.ExperimentID != "hybrid-rec-v1" {
		t.Errorf("Recommend.ExperimentID = %q, want hybrid-rec-v1", cfg.Recommend.ExperimentID)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.TTL != time.Hour || cfg.Cache.FallbackTTL != 30*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Events.Topic != "recommend.interactions" || cfg.Events.StreamName != "RECOMMEND_INTERACTIONS" {
		t.Errorf("Events = %+v", cfg.Events)
	}
	if cfg.Security.AuthMode != "jwt" || cfg.Security.AdminRole != "admin" {
		t.Errorf("Security = %+v", cfg.Security)
	}

	// The defaults are complete except for the JWT secret.
	cfg.Security.JWTSecret = testSecret
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"CACHE_BACKEND", "cache.backend"},
		{"REDIS_ADDR", "cache.redis_addr"},
		{"DUCKDB_PATH", "database.path"},
		{"NATS_URL", "events.nats_url"},
		{"NATS_STORE_DIR", "events.embedded_store_dir"},
		{"EVENTS_STREAM", "events.stream_name"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"RECOMMEND_TRAIN_INTERVAL", "recommend.train_interval"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestEnvMappingsTargetKnownKeys(t *testing.T) {
	t.Parallel()

	// Every mapped path must name a section declared on Config.
	sections := map[string]bool{
		"server": true, "logging": true, "recommend": true, "cache": true,
		"database": true, "events": true, "security": true,
	}
	for env, path := range envMappings {
		section, _, ok := strings.Cut(path, ".")
		if !ok || !sections[section] {
			t.Errorf("%s maps to %q, outside any config section", env, path)
		}
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	withoutConfigFile(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CACHE_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RECOMMEND_TRAIN_ON_STARTUP", "false")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Cache.TTL != 15*time.Minute {
		t.Errorf("Cache.TTL = %v, want 15m", cfg.Cache.TTL)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Server.CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Recommend.TrainOnStartup {
		t.Error("Recommend.TrainOnStartup = true, want false")
	}

	// Unset values keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Recommend.Neighbors != 50 {
		t.Errorf("Recommend.Neighbors = %d, want 50", cfg.Recommend.Neighbors)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 8888
  request_timeout: 5s
cache:
  backend: redis
  redis_addr: "redis:6379"
events:
  backend: nats
  nats_url: "nats://nats:4222"
security:
  auth_mode: none
logging:
  level: warn
  format: console
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7000")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 (env overrides file)", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want 5s", cfg.Server.RequestTimeout)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "redis:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Events.Backend != "nats" {
		t.Errorf("Events.Backend = %q, want nats", cfg.Events.Backend)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q, want console", cfg.Logging.Format)
	}
	if cfg.Database.Path != "/data/curator.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	withoutConfigFile(t)
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", "short")

	_, err := LoadWithKoanf()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("LoadWithKoanf() error = %v, want JWT_SECRET failure", err)
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, "")

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want none", got)
	}

	if err := os.WriteFile("config.yml", []byte("server:\n  port: 1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := findConfigFile(); got != "config.yml" {
		t.Errorf("findConfigFile() = %q, want config.yml", got)
	}

	explicit := filepath.Join(dir, "other.yaml")
	if err := os.WriteFile(explicit, []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, explicit)
	if got := findConfigFile(); got != explicit {
		t.Errorf("findConfigFile() = %q, want %q", got, explicit)
	}
}
