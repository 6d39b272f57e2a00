// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/curator/config.yaml",
	"/etc/curator/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, the lowest configuration layer.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			Host:              "0.0.0.0",
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			RequestTimeout:    10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			HistoryWindow:           90 * 24 * time.Hour,
			StageTimeout:            2 * time.Second,
			GatewayTimeout:          time.Second,
			MaxCandidates:           200,
			Neighbors:               50,
			MinSimilarity:           0.1,
			FreshnessHalfLife:       14 * 24 * time.Hour,
			FallbackFreshnessWindow: 30 * 24 * time.Hour,
			ExperimentID:            "hybrid-rec-v1",
			SlowThreshold:           200 * time.Millisecond,
			MonitorSamples:          1000,
			Workers:                 0,
			TrainInterval:           time.Hour,
			TrainOnStartup:          true,
			TrainTimeout:            30 * time.Minute,
			ManualTrainPerMinute:    2,
		},
		Cache: CacheConfig{
			Backend:        "memory",
			MemoryCapacity: 10000,
			TTL:            time.Hour,
			FallbackTTL:    30 * time.Minute,
			OpTimeout:      100 * time.Millisecond,
			KeyPrefix:      "curator:",
			RedisAddr:      "127.0.0.1:6379",
			BadgerPath:     "/data/cache",
		},
		Database: DatabaseConfig{
			Driver:    "duckdb",
			Path:      "/data/curator.duckdb",
			Threads:   0,
			MaxMemory: "1GB",
		},
		Events: EventsConfig{
			Backend:       "gochannel",
			NATSURL:       "nats://127.0.0.1:4222",
			Topic:         "recommend.interactions",
			StreamName:    "RECOMMEND_INTERACTIONS",
			MaxAge:        24 * time.Hour,
			ConsumerGroup: "curator-invalidator",
		},
		Security: SecurityConfig{
			AuthMode:       "jwt",
			SessionTimeout: 24 * time.Hour,
			AdminRole:      "admin",
		},
	}
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration in three layers, each overriding the
// previous one:
//  1. built-in defaults
//  2. an optional YAML file (CONFIG_PATH or the first of DefaultConfigPaths)
//  3. environment variables listed in envMappings
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when they come
// from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":           "server.port",
	"http_host":           "server.host",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"request_timeout":     "server.request_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation pipeline
	"recommend_history_window":          "recommend.history_window",
	"recommend_stage_timeout":           "recommend.stage_timeout",
	"recommend_gateway_timeout":         "recommend.gateway_timeout",
	"recommend_max_candidates":          "recommend.max_candidates",
	"recommend_neighbors":               "recommend.neighbors",
	"recommend_min_similarity":          "recommend.min_similarity",
	"recommend_freshness_half_life":     "recommend.freshness_half_life",
	"recommend_fallback_freshness":      "recommend.fallback_freshness_window",
	"recommend_experiment_id":           "recommend.experiment_id",
	"recommend_slow_threshold":          "recommend.slow_threshold",
	"recommend_monitor_samples":         "recommend.monitor_samples",
	"recommend_workers":                 "recommend.workers",
	"recommend_train_interval":          "recommend.train_interval",
	"recommend_train_on_startup":        "recommend.train_on_startup",
	"recommend_train_timeout":           "recommend.train_timeout",
	"recommend_manual_train_per_minute": "recommend.manual_train_per_minute",

	// Cache
	"cache_backend":         "cache.backend",
	"cache_memory_capacity": "cache.memory_capacity",
	"cache_ttl":             "cache.ttl",
	"cache_fallback_ttl":    "cache.fallback_ttl",
	"cache_op_timeout":      "cache.op_timeout",
	"cache_key_prefix":      "cache.key_prefix",
	"redis_addr":            "cache.redis_addr",
	"redis_password":        "cache.redis_password",
	"redis_db":              "cache.redis_db",
	"badger_path":           "cache.badger_path",

	// Database
	"database_driver":   "database.driver",
	"duckdb_path":       "database.path",
	"duckdb_threads":    "database.threads",
	"duckdb_max_memory": "database.max_memory",
	"seed_file":         "database.seed_file",

	// Events
	"events_backend":        "events.backend",
	"nats_url":              "events.nats_url",
	"events_topic":          "events.topic",
	"events_stream":         "events.stream_name",
	"events_max_age":        "events.max_age",
	"events_consumer_group": "events.consumer_group",
	"nats_store_dir":        "events.embedded_store_dir",

	// Security
	"auth_mode":       "security.auth_mode",
	"jwt_secret":      "security.jwt_secret",
	"session_timeout": "security.session_timeout",
	"admin_role":      "security.admin_role",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
