// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Database  DatabaseConfig  `koanf:"database"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	Host         string        `koanf:"host"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// RequestTimeout bounds one recommendation call end to end.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig holds recommendation pipeline and trainer settings.
type RecommendConfig struct {
	HistoryWindow           time.Duration `koanf:"history_window"`
	StageTimeout            time.Duration `koanf:"stage_timeout"`
	GatewayTimeout          time.Duration `koanf:"gateway_timeout"`
	MaxCandidates           int           `koanf:"max_candidates"`
	Neighbors               int           `koanf:"neighbors"`
	MinSimilarity           float64       `koanf:"min_similarity"`
	FreshnessHalfLife       time.Duration `koanf:"freshness_half_life"`
	FallbackFreshnessWindow time.Duration `koanf:"fallback_freshness_window"`
	ExperimentID            string        `koanf:"experiment_id"`
	SlowThreshold           time.Duration `koanf:"slow_threshold"`
	MonitorSamples          int           `koanf:"monitor_samples"`

	// Workers bounds training parallelism; 0 means runtime.NumCPU().
	Workers int `koanf:"workers"`

	TrainInterval  time.Duration `koanf:"train_interval"`
	TrainOnStartup bool          `koanf:"train_on_startup"`
	TrainTimeout   time.Duration `koanf:"train_timeout"`

	// ManualTrainPerMinute throttles POST /recommendations/train.
	ManualTrainPerMinute int `koanf:"manual_train_per_minute"`
}

// CacheConfig selects and tunes the result cache.
type CacheConfig struct {
	// Backend is memory, redis or badger. The network and embedded backends
	// sit behind a memory L1.
	Backend        string        `koanf:"backend"`
	MemoryCapacity int           `koanf:"memory_capacity"`
	TTL            time.Duration `koanf:"ttl"`
	FallbackTTL    time.Duration `koanf:"fallback_ttl"`
	OpTimeout      time.Duration `koanf:"op_timeout"`
	KeyPrefix      string        `koanf:"key_prefix"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	BadgerPath string `koanf:"badger_path"`
}

// DatabaseConfig selects the interaction and content store.
type DatabaseConfig struct {
	// Driver is duckdb or memory.
	Driver    string `koanf:"driver"`
	Path      string `koanf:"path"`
	Threads   int    `koanf:"threads"`
	MaxMemory string `koanf:"max_memory"`

	// SeedFile is a JSON file of content and interactions. The memory
	// driver serves it directly; the duckdb driver imports it into an
	// empty database.
	SeedFile string `koanf:"seed_file"`
}

// EventsConfig selects the event bus for tracked interactions.
type EventsConfig struct {
	// Backend is gochannel, nats or embedded. embedded starts an
	// in-process NATS JetStream server.
	Backend string `koanf:"backend"`
	NATSURL string `koanf:"nats_url"`
	Topic   string `koanf:"topic"`

	// StreamName is the JetStream stream holding Topic. Stream names may
	// not contain dots, so it is configured separately from the topic.
	StreamName string        `koanf:"stream_name"`
	MaxAge     time.Duration `koanf:"max_age"`

	// ConsumerGroup is the durable queue group on NATS.
	ConsumerGroup string `koanf:"consumer_group"`

	// EmbeddedStoreDir is the JetStream store of the embedded server.
	// Empty uses a temporary directory.
	EmbeddedStoreDir string `koanf:"embedded_store_dir"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	// AuthMode is jwt or none. With none every request runs as the user
	// named by the X-User-ID header, which is for local development only.
	AuthMode       string        `koanf:"auth_mode"`
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	AdminRole      string        `koanf:"admin_role"`
}
