// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"fmt"
	"runtime"
	"time"

	"github.com/goccy/go-json"
)

// Config contains all configuration for the recommendation pipeline.
type Config struct {
	// Weights is the weights table injected into every stage.
	Weights Weights `json:"weights"`

	// HistoryWindow bounds the interaction history read per request and
	// per training run.
	// Default: 90 days.
	HistoryWindow time.Duration `json:"history_window"`

	// RequestTimeout bounds a whole orchestrator call.
	// Default: 10s.
	RequestTimeout time.Duration `json:"request_timeout"`

	// StageTimeout bounds each similarity engine and reranking stage.
	// Default: 2s.
	StageTimeout time.Duration `json:"stage_timeout"`

	// GatewayTimeout bounds each interaction or content gateway call.
	// Default: 1s.
	GatewayTimeout time.Duration `json:"gateway_timeout"`

	// MaxCandidates caps each engine's candidate list before combination.
	// Default: 200.
	MaxCandidates int `json:"max_candidates"`

	// Neighbors is the number of similar users or items retained per subject.
	// Default: 50.
	Neighbors int `json:"neighbors"`

	// MinSimilarity discards weaker user and item pairs.
	// Default: 0.1.
	MinSimilarity float64 `json:"min_similarity"`

	// FreshnessHalfLife is the age at which the ranker's freshness signal halves.
	// Default: 14 days.
	FreshnessHalfLife time.Duration `json:"freshness_half_life"`

	// FallbackFreshnessWindow is the age after which content earns no
	// fallback freshness bonus.
	// Default: 30 days.
	FallbackFreshnessWindow time.Duration `json:"fallback_freshness_window"`

	// CacheTTL applies to recommendations and similarity lookups.
	// Default: 1h.
	CacheTTL time.Duration `json:"cache_ttl"`

	// FallbackCacheTTL applies to fallback lists.
	// Default: 30m.
	FallbackCacheTTL time.Duration `json:"fallback_cache_ttl"`

	// ExperimentID is echoed by A/B responses and tagged on tracked events.
	ExperimentID string `json:"experiment_id"`

	// SlowThreshold marks requests as slow and decides health.
	// Default: 200ms.
	SlowThreshold time.Duration `json:"slow_threshold"`

	// MonitorSamples is the ring buffer capacity of the performance monitor.
	// Default: 1000.
	MonitorSamples int `json:"monitor_samples"`

	// Workers bounds training parallelism.
	// Default: runtime.NumCPU().
	Workers int `json:"workers"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:                 DefaultWeights(),
		HistoryWindow:           90 * 24 * time.Hour,
		RequestTimeout:          10 * time.Second,
		StageTimeout:            2 * time.Second,
		GatewayTimeout:          time.Second,
		MaxCandidates:           200,
		Neighbors:               50,
		MinSimilarity:           0.1,
		FreshnessHalfLife:       14 * 24 * time.Hour,
		FallbackFreshnessWindow: 30 * 24 * time.Hour,
		CacheTTL:                time.Hour,
		FallbackCacheTTL:        30 * time.Minute,
		ExperimentID:            "hybrid-rec-v1",
		SlowThreshold:           200 * time.Millisecond,
		MonitorSamples:          1000,
		Workers:                 runtime.NumCPU(),
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"history_window", c.HistoryWindow},
		{"request_timeout", c.RequestTimeout},
		{"stage_timeout", c.StageTimeout},
		{"gateway_timeout", c.GatewayTimeout},
		{"freshness_half_life", c.FreshnessHalfLife},
		{"fallback_freshness_window", c.FallbackFreshnessWindow},
		{"cache_ttl", c.CacheTTL},
		{"fallback_cache_ttl", c.FallbackCacheTTL},
		{"slow_threshold", c.SlowThreshold},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", d.name, d.d)
		}
	}

	if c.StageTimeout > c.RequestTimeout {
		return fmt.Errorf("stage_timeout must be <= request_timeout, got %v > %v", c.StageTimeout, c.RequestTimeout)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max_candidates must be positive, got %d", c.MaxCandidates)
	}
	if c.Neighbors < 1 {
		return fmt.Errorf("neighbors must be positive, got %d", c.Neighbors)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("min_similarity must be in [0, 1], got %f", c.MinSimilarity)
	}
	if c.MonitorSamples < 1 {
		return fmt.Errorf("monitor_samples must be positive, got %d", c.MonitorSamples)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.ExperimentID == "" {
		return fmt.Errorf("experiment_id is required")
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// MarshalJSON renders durations as strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		HistoryWindow           string `json:"history_window"`
		RequestTimeout          string `json:"request_timeout"`
		StageTimeout            string `json:"stage_timeout"`
		GatewayTimeout          string `json:"gateway_timeout"`
		FreshnessHalfLife       string `json:"freshness_half_life"`
		FallbackFreshnessWindow string `json:"fallback_freshness_window"`
		CacheTTL                string `json:"cache_ttl"`
		FallbackCacheTTL        string `json:"fallback_cache_ttl"`
		SlowThreshold           string `json:"slow_threshold"`
	}{
		Alias:                   (*Alias)(c),
		HistoryWindow:           c.HistoryWindow.String(),
		RequestTimeout:          c.RequestTimeout.String(),
		StageTimeout:            c.StageTimeout.String(),
		GatewayTimeout:          c.GatewayTimeout.String(),
		FreshnessHalfLife:       c.FreshnessHalfLife.String(),
		FallbackFreshnessWindow: c.FallbackFreshnessWindow.String(),
		CacheTTL:                c.CacheTTL.String(),
		FallbackCacheTTL:        c.FallbackCacheTTL.String(),
		SlowThreshold:           c.SlowThreshold.String(),
	})
}
