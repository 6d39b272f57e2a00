// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/curator/internal/cache"
	"github.com/tomtom215/curator/internal/logging"
)

// cachedResult is the value stored for every cached response. ExpiresAt is
// checked on read, so an entry is never served past it even when the
// store's own expiry is coarser.
type cachedResult struct {
	ExpiresAt   time.Time    `json:"expiresAt"`
	Source      Source       `json:"source"`
	Candidates  []Candidate  `json:"candidates"`
	UserProfile *UserSummary `json:"userProfile,omitempty"`

	// Users is set for similar-user lookups.
	Users []SimilarityScore `json:"users,omitempty"`
}

// ResultCache is the recommendation cache in front of the pipeline. Store
// failures are logged and treated as misses; they never fail a request.
type ResultCache struct {
	store   cache.Store
	timeout time.Duration
	now     func() time.Time
	flights singleflight.Group
}

// NewResultCache wraps store. opTimeout bounds each store call. A nil
// store disables caching.
func NewResultCache(store cache.Store, opTimeout time.Duration) *ResultCache {
	return &ResultCache{store: store, timeout: opTimeout, now: time.Now}
}

func (c *ResultCache) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// get returns a live entry for key.
func (c *ResultCache) get(ctx context.Context, key string) (*cachedResult, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry cachedResult
	if err := json.Unmarshal(raw, &entry); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return nil, false
	}
	if !c.now().Before(entry.ExpiresAt) {
		return nil, false
	}
	return &entry, true
}

// put stores entry under key for ttl.
func (c *ResultCache) put(ctx context.Context, key string, entry *cachedResult, ttl time.Duration) {
	if c == nil || c.store == nil {
		return
	}
	entry.ExpiresAt = c.now().Add(ttl)
	raw, err := json.Marshal(entry)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}

	ctx, cancel := c.opContext(ctx)
	defer cancel()
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// fetch is a read-through lookup where concurrent misses of the same key
// share one computation. The shared computation outlives a cancelled
// caller, bounded by limit; the caller itself returns ctx.Err().
func (c *ResultCache) fetch(ctx context.Context, key string, ttl, limit time.Duration, compute func(context.Context) (*cachedResult, error)) (*cachedResult, bool, error) {
	if entry, ok := c.get(ctx, key); ok {
		return entry, true, nil
	}

	ch := c.flights.DoChan(key, func() (any, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), limit)
		defer cancel()
		entry, err := compute(cctx)
		if err != nil {
			return nil, err
		}
		c.put(cctx, key, entry, ttl)
		return entry, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*cachedResult), false, nil
	}
}

// invalidateUser drops every user-scoped entry of userID.
func (c *ResultCache) invalidateUser(ctx context.Context, userID string) (int, error) {
	if c == nil || c.store == nil {
		return 0, nil
	}
	return cache.InvalidateUser(ctx, c.store, userID)
}

// clear drops every entry.
func (c *ResultCache) clear(ctx context.Context) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Clear(ctx)
}
