// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cache

import (
	"context"
	"time"

	"github.com/tomtom215/curator/internal/metrics"
)

// Instrumented records Prometheus counters for every operation of the
// wrapped store under a tier label.
type Instrumented struct {
	Store
	tier string
}

// Instrument wraps s with metrics labelled tier.
func Instrument(tier string, s Store) *Instrumented {
	return &Instrumented{Store: s, tier: tier}
}

// Get implements Store.
func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok, err := i.Store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCacheResult(i.tier, "get", "error")
	case ok:
		metrics.RecordCacheResult(i.tier, "get", "hit")
	default:
		metrics.RecordCacheResult(i.tier, "get", "miss")
	}
	return val, ok, err
}

// Set implements Store.
func (i *Instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := i.Store.Set(ctx, key, value, ttl)
	metrics.RecordCacheResult(i.tier, "set", result(err))
	return err
}

// DeletePrefix implements Store.
func (i *Instrumented) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	n, err := i.Store.DeletePrefix(ctx, prefix)
	metrics.RecordCacheResult(i.tier, "delete_prefix", result(err))
	return n, err
}

// Clear implements Store.
func (i *Instrumented) Clear(ctx context.Context) error {
	err := i.Store.Clear(ctx)
	metrics.RecordCacheResult(i.tier, "clear", result(err))
	return err
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
