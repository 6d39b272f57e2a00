// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/curator/internal/logging"
)

// Tiered is a two-tier store: a small in-process L1 in front of a shared
// or persistent L2. Writes go to both tiers. Reads that miss L1 and hit L2
// are promoted into L1 for at most PromoteTTL.
type Tiered struct {
	l1 *Memory
	l2 Store

	// PromoteTTL caps how long an L2 hit lives in L1, since the remaining
	// L2 lifetime is unknown.
	PromoteTTL time.Duration
}

// NewTiered builds a two-tier store.
func NewTiered(l1 *Memory, l2 Store) *Tiered {
	return &Tiered{l1: l1, l2: l2, PromoteTTL: time.Minute}
}

// Get implements Store. An L2 failure after an L1 miss is reported.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, ok, err := t.l1.Get(ctx, key); err == nil && ok {
		return val, true, nil
	}

	val, ok, err := t.l2.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	if err := t.l1.Set(ctx, key, val, t.PromoteTTL); err != nil {
		logging.Debug().Err(err).Str("key", key).Msg("L1 promotion failed")
	}
	return val, true, nil
}

// Set implements Store. L1 is written even when L2 fails.
func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	l1TTL := ttl
	if l1TTL > t.PromoteTTL && t.PromoteTTL > 0 {
		l1TTL = t.PromoteTTL
	}
	err1 := t.l1.Set(ctx, key, value, l1TTL)
	err2 := t.l2.Set(ctx, key, value, ttl)
	return errors.Join(err1, err2)
}

// Delete implements Store.
func (t *Tiered) Delete(ctx context.Context, keys ...string) error {
	return errors.Join(t.l1.Delete(ctx, keys...), t.l2.Delete(ctx, keys...))
}

// DeletePrefix implements Store. The count is the larger of the two tiers.
func (t *Tiered) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	n1, err1 := t.l1.DeletePrefix(ctx, prefix)
	n2, err2 := t.l2.DeletePrefix(ctx, prefix)
	return max(n1, n2), errors.Join(err1, err2)
}

// Clear implements Store.
func (t *Tiered) Clear(ctx context.Context) error {
	return errors.Join(t.l1.Clear(ctx), t.l2.Clear(ctx))
}

// Close implements Store.
func (t *Tiered) Close() error {
	return errors.Join(t.l1.Close(), t.l2.Close())
}

var _ Store = (*Tiered)(nil)
