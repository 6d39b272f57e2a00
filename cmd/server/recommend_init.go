// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/tomtom215/curator/internal/cache"
	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/database"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/recommend/algorithms"
	"github.com/tomtom215/curator/internal/recommend/memory"
	"github.com/tomtom215/curator/internal/recommend/reranking"
	"github.com/tomtom215/curator/internal/resilience"
)

// storage is the event store and catalog behind the gateways.
type storage interface {
	recommend.InteractionGateway
	recommend.ContentGateway
	recommend.InteractionRecorder
}

// seedable stores accept a bulk load at startup.
type seedable interface {
	UpsertContent(ctx context.Context, p *recommend.ContentFeatureProfile) error
	RecordInteractions(ctx context.Context, events []recommend.Event) error
}

// RecommendComponents holds the wired recommendation core.
type RecommendComponents struct {
	Orchestrator *recommend.Orchestrator
	Recorder     recommend.InteractionRecorder

	closers []io.Closer
}

// Close releases the storage and cache backends in reverse order.
func (c *RecommendComponents) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildRecommendConfig maps the application config onto the pipeline config.
func buildRecommendConfig(cfg *config.Config) *recommend.Config {
	rc := recommend.DefaultConfig()
	r := &cfg.Recommend
	rc.HistoryWindow = r.HistoryWindow
	rc.RequestTimeout = cfg.Server.RequestTimeout
	rc.StageTimeout = r.StageTimeout
	rc.GatewayTimeout = r.GatewayTimeout
	rc.MaxCandidates = r.MaxCandidates
	rc.Neighbors = r.Neighbors
	rc.MinSimilarity = r.MinSimilarity
	rc.FreshnessHalfLife = r.FreshnessHalfLife
	rc.FallbackFreshnessWindow = r.FallbackFreshnessWindow
	rc.CacheTTL = cfg.Cache.TTL
	rc.FallbackCacheTTL = cfg.Cache.FallbackTTL
	rc.ExperimentID = r.ExperimentID
	rc.SlowThreshold = r.SlowThreshold
	rc.MonitorSamples = r.MonitorSamples
	rc.Workers = r.Workers
	if rc.Workers == 0 {
		rc.Workers = runtime.NumCPU()
	}
	return rc
}

// initRecommend opens storage and cache and wires the orchestrator.
func initRecommend(ctx context.Context, cfg *config.Config) (*RecommendComponents, error) {
	comps := &RecommendComponents{}

	store, err := initStorage(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		comps.closers = append(comps.closers, c)
	}
	comps.Recorder = store

	resultCache, err := initCache(ctx, &cfg.Cache)
	if err != nil {
		_ = comps.Close()
		return nil, err
	}
	comps.closers = append(comps.closers, resultCache)

	rc := buildRecommendConfig(cfg)
	breakerCfg := resilience.DefaultBreakerConfig()
	interactions := recommend.GuardInteractions(store, rc.GatewayTimeout, breakerCfg)
	content := recommend.GuardContent(store, rc.GatewayTimeout, breakerCfg)

	neighbors := algorithms.NeighborConfig{
		Neighbors:     rc.Neighbors,
		MinSimilarity: rc.MinSimilarity,
		Workers:       rc.Workers,
	}
	engines := []recommend.Engine{
		algorithms.NewUserBased(neighbors),
		algorithms.NewItemBased(neighbors),
		algorithms.NewContent(algorithms.ContentConfig{
			Weights:       rc.Weights.Content,
			MinSimilarity: rc.MinSimilarity,
			Workers:       rc.Workers,
		}),
	}

	orchestrator, err := recommend.NewOrchestrator(rc, recommend.Deps{
		Interactions:   interactions,
		Content:        content,
		Trainer:        recommend.NewTrainer(interactions, content, engines, rc),
		Ranker:         reranking.NewRanker(rc.Weights.Ranker, rc.FreshnessHalfLife),
		Diversifier:    reranking.NewDiversity(rc.Weights.Diversity),
		Cache:          resultCache,
		CacheOpTimeout: cfg.Cache.OpTimeout,
	})
	if err != nil {
		_ = comps.Close()
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}
	comps.Orchestrator = orchestrator

	logging.Info().
		Str("experiment_id", rc.ExperimentID).
		Int("workers", rc.Workers).
		Dur("history_window", rc.HistoryWindow).
		Msg("recommendation pipeline initialized")
	return comps, nil
}

// initStorage opens the configured event store and catalog and applies the
// seed file, if any.
func initStorage(ctx context.Context, cfg *config.DatabaseConfig) (storage, error) {
	switch cfg.Driver {
	case "memory":
		if cfg.SeedFile == "" {
			logging.Warn().Msg("in-memory storage without a seed file starts empty")
			return memory.New(), nil
		}
		store, err := memory.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load seed: %w", err)
		}
		logging.Info().Str("seed_file", cfg.SeedFile).Msg("in-memory storage seeded")
		return store, nil

	case "duckdb":
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if cfg.SeedFile != "" {
			if err := seedIfEmpty(ctx, db, db, cfg.SeedFile); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		logging.Info().Str("path", cfg.Path).Msg("database initialized")
		return db, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// seedIfEmpty loads the seed file into dst when the catalog has no content.
func seedIfEmpty(ctx context.Context, catalog recommend.ContentGateway, dst seedable, path string) error {
	existing, err := catalog.ListCatalog(ctx, recommend.CatalogFilter{Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to inspect catalog: %w", err)
	}
	if len(existing) > 0 {
		logging.Info().Str("seed_file", path).Msg("catalog not empty, skipping seed")
		return nil
	}

	seed, err := memory.ReadSeed(path)
	if err != nil {
		return fmt.Errorf("failed to load seed: %w", err)
	}
	for i := range seed.Content {
		if err := dst.UpsertContent(ctx, &seed.Content[i]); err != nil {
			return fmt.Errorf("failed to seed content %s: %w", seed.Content[i].ContentID, err)
		}
	}
	if err := dst.RecordInteractions(ctx, seed.Interactions); err != nil {
		return fmt.Errorf("failed to seed interactions: %w", err)
	}
	logging.Info().
		Int("content", len(seed.Content)).
		Int("interactions", len(seed.Interactions)).
		Msg("database seeded")
	return nil
}

// initCache builds the result cache: an in-process LRU, optionally in front
// of a shared Redis or a persistent Badger tier.
func initCache(ctx context.Context, cfg *config.CacheConfig) (cache.Store, error) {
	l1 := cache.NewMemory(cfg.MemoryCapacity)

	var l2 cache.Store
	switch cfg.Backend {
	case "memory":
		logging.Info().Int("capacity", cfg.MemoryCapacity).Msg("memory cache enabled")
		return cache.Instrument("memory", l1), nil
	case "redis":
		r, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		l2 = cache.Instrument("redis", r)
	case "badger":
		b, err := cache.OpenBadger(cfg.BadgerPath, cfg.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger cache: %w", err)
		}
		l2 = cache.Instrument("badger", b)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}

	logging.Info().Str("backend", cfg.Backend).Msg("tiered cache enabled")
	return cache.NewTiered(l1, l2), nil
}
