// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// MinJWTSecretLength is the shortest accepted HS256 secret.
const MinJWTSecretLength = 32

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateRecommend,
		c.validateCache,
		c.validateDatabase,
		c.validateEvents,
		c.validateSecurity,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	s := &c.Server
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", s.Port)
	}
	if err := positive(map[string]time.Duration{
		"HTTP_READ_TIMEOUT":  s.ReadTimeout,
		"HTTP_WRITE_TIMEOUT": s.WriteTimeout,
		"REQUEST_TIMEOUT":    s.RequestTimeout,
	}); err != nil {
		return err
	}
	if !s.RateLimitDisabled {
		if s.RateLimitRequests < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", s.RateLimitRequests)
		}
		if s.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", s.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains([]string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if err := positive(map[string]time.Duration{
		"RECOMMEND_HISTORY_WINDOW":      r.HistoryWindow,
		"RECOMMEND_STAGE_TIMEOUT":       r.StageTimeout,
		"RECOMMEND_GATEWAY_TIMEOUT":     r.GatewayTimeout,
		"RECOMMEND_FRESHNESS_HALF_LIFE": r.FreshnessHalfLife,
		"RECOMMEND_FALLBACK_FRESHNESS":  r.FallbackFreshnessWindow,
		"RECOMMEND_SLOW_THRESHOLD":      r.SlowThreshold,
		"RECOMMEND_TRAIN_INTERVAL":      r.TrainInterval,
		"RECOMMEND_TRAIN_TIMEOUT":       r.TrainTimeout,
	}); err != nil {
		return err
	}
	if r.StageTimeout > c.Server.RequestTimeout {
		return fmt.Errorf("RECOMMEND_STAGE_TIMEOUT (%v) must not exceed REQUEST_TIMEOUT (%v)", r.StageTimeout, c.Server.RequestTimeout)
	}
	if r.MaxCandidates < 1 || r.Neighbors < 1 || r.MonitorSamples < 1 {
		return fmt.Errorf("recommend max_candidates, neighbors and monitor_samples must be positive")
	}
	if r.MinSimilarity < 0 || r.MinSimilarity > 1 {
		return fmt.Errorf("RECOMMEND_MIN_SIMILARITY must be in [0, 1], got %v", r.MinSimilarity)
	}
	if r.Workers < 0 {
		return fmt.Errorf("RECOMMEND_WORKERS must not be negative, got %d", r.Workers)
	}
	if r.ManualTrainPerMinute < 1 {
		return fmt.Errorf("RECOMMEND_MANUAL_TRAIN_PER_MINUTE must be positive, got %d", r.ManualTrainPerMinute)
	}
	if strings.TrimSpace(r.ExperimentID) == "" {
		return fmt.Errorf("RECOMMEND_EXPERIMENT_ID is required")
	}
	return nil
}

func (c *Config) validateCache() error {
	cc := &c.Cache
	if err := positive(map[string]time.Duration{
		"CACHE_TTL":          cc.TTL,
		"CACHE_FALLBACK_TTL": cc.FallbackTTL,
		"CACHE_OP_TIMEOUT":   cc.OpTimeout,
	}); err != nil {
		return err
	}
	if cc.MemoryCapacity < 1 {
		return fmt.Errorf("CACHE_MEMORY_CAPACITY must be positive, got %d", cc.MemoryCapacity)
	}
	switch cc.Backend {
	case "memory":
	case "redis":
		if _, _, err := net.SplitHostPort(cc.RedisAddr); err != nil {
			return fmt.Errorf("REDIS_ADDR must be host:port: %w", err)
		}
	case "badger":
		if cc.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required when CACHE_BACKEND=badger")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory, redis or badger, got %q", cc.Backend)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	d := &c.Database
	switch d.Driver {
	case "duckdb":
		if d.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DATABASE_DRIVER=duckdb")
		}
	case "memory":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be duckdb or memory, got %q", d.Driver)
	}
	if d.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", d.Threads)
	}
	return nil
}

func (c *Config) validateEvents() error {
	e := &c.Events
	if e.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required")
	}
	switch e.Backend {
	case "gochannel":
	case "nats":
		u, err := url.Parse(e.NATSURL)
		if err != nil || u.Scheme != "nats" || u.Host == "" {
			return fmt.Errorf("NATS_URL must be a nats:// URL, got %q", e.NATSURL)
		}
		return e.validateStream()
	case "embedded":
		return e.validateStream()
	default:
		return fmt.Errorf("EVENTS_BACKEND must be gochannel, nats or embedded, got %q", e.Backend)
	}
	return nil
}

func (e *EventsConfig) validateStream() error {
	if e.ConsumerGroup == "" {
		return fmt.Errorf("EVENTS_CONSUMER_GROUP is required when EVENTS_BACKEND=%s", e.Backend)
	}
	if e.StreamName == "" || strings.ContainsAny(e.StreamName, ".*> \t/\\") {
		return fmt.Errorf("EVENTS_STREAM must be a non-empty name without dots, wildcards or spaces, got %q", e.StreamName)
	}
	if e.MaxAge <= 0 {
		return fmt.Errorf("EVENTS_MAX_AGE must be positive, got %v", e.MaxAge)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := &c.Security
	switch s.AuthMode {
	case "jwt":
		if len(s.JWTSecret) < MinJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", MinJWTSecretLength)
		}
		if s.SessionTimeout <= 0 {
			return fmt.Errorf("SESSION_TIMEOUT must be positive, got %v", s.SessionTimeout)
		}
	case "none":
	default:
		return fmt.Errorf("AUTH_MODE must be jwt or none, got %q", s.AuthMode)
	}
	if s.AdminRole == "" {
		return fmt.Errorf("ADMIN_ROLE is required")
	}
	return nil
}

// positive reports the first non-positive duration, in name order.
func positive(durations map[string]time.Duration) error {
	names := lo.Keys(durations)
	slices.Sort(names)
	for _, name := range names {
		if durations[name] <= 0 {
			return fmt.Errorf("%s must be positive, got %v", name, durations[name])
		}
	}
	return nil
}
