// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"request timeout", func(c *Config) { c.Server.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
		{"rate limit", func(c *Config) { c.Server.RateLimitRequests = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled", func(c *Config) {
			c.Server.RateLimitDisabled = true
			c.Server.RateLimitRequests = 0
		}, ""},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"stage exceeds request", func(c *Config) { c.Recommend.StageTimeout = time.Minute }, "RECOMMEND_STAGE_TIMEOUT"},
		{"min similarity", func(c *Config) { c.Recommend.MinSimilarity = 1.5 }, "RECOMMEND_MIN_SIMILARITY"},
		{"negative workers", func(c *Config) { c.Recommend.Workers = -1 }, "RECOMMEND_WORKERS"},
		{"experiment", func(c *Config) { c.Recommend.ExperimentID = " " }, "RECOMMEND_EXPERIMENT_ID"},
		{"train interval", func(c *Config) { c.Recommend.TrainInterval = 0 }, "RECOMMEND_TRAIN_INTERVAL"},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "CACHE_BACKEND"},
		{"redis addr", func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.RedisAddr = "redis"
		}, "REDIS_ADDR"},
		{"badger path", func(c *Config) {
			c.Cache.Backend = "badger"
			c.Cache.BadgerPath = ""
		}, "BADGER_PATH"},
		{"cache ttl", func(c *Config) { c.Cache.TTL = 0 }, "CACHE_TTL"},
		{"database driver", func(c *Config) { c.Database.Driver = "postgres" }, "DATABASE_DRIVER"},
		{"memory driver", func(c *Config) {
			c.Database.Driver = "memory"
			c.Database.Path = ""
		}, ""},
		{"events backend", func(c *Config) { c.Events.Backend = "kafka" }, "EVENTS_BACKEND"},
		{"nats url", func(c *Config) {
			c.Events.Backend = "nats"
			c.Events.NATSURL = "http://nats:4222"
		}, "NATS_URL"},
		{"nats stream with dots", func(c *Config) {
			c.Events.Backend = "nats"
			c.Events.StreamName = "recommend.interactions"
		}, "EVENTS_STREAM"},
		{"embedded", func(c *Config) { c.Events.Backend = "embedded" }, ""},
		{"embedded consumer group", func(c *Config) {
			c.Events.Backend = "embedded"
			c.Events.ConsumerGroup = ""
		}, "EVENTS_CONSUMER_GROUP"},
		{"embedded max age", func(c *Config) {
			c.Events.Backend = "embedded"
			c.Events.MaxAge = 0
		}, "EVENTS_MAX_AGE"},
		{"auth mode", func(c *Config) { c.Security.AuthMode = "basic" }, "AUTH_MODE"},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "abc" }, "JWT_SECRET"},
		{"no auth needs no secret", func(c *Config) {
			c.Security.AuthMode = "none"
			c.Security.JWTSecret = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Validate() error = %v, want nil", err)
			case tt.wantErr != "" && err == nil:
				t.Errorf("Validate() = nil, want error mentioning %s", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
