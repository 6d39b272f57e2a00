// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/resilience"
)

// InteractionGateway reads user actions from the event store.
type InteractionGateway interface {
	// GetInteractions returns one user's events newer than now-window.
	GetInteractions(ctx context.Context, userID string, window time.Duration) ([]Event, error)

	// ListInteractions returns every event newer than now-window. It feeds
	// training and evaluation.
	ListInteractions(ctx context.Context, window time.Duration) ([]Event, error)
}

// InteractionRecorder persists tracked user actions.
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, e Event) error
}

// ContentGateway reads the content catalog. GetContentFeatures returns an
// error matching ErrContentNotFound for unknown IDs.
type ContentGateway interface {
	GetContentFeatures(ctx context.Context, contentID string) (*ContentFeatureProfile, error)
	ListCatalog(ctx context.Context, filter CatalogFilter) ([]ContentFeatureProfile, error)
}

// GuardedInteractions bounds every call with a timeout and a circuit
// breaker. Failures surface as ErrUpstreamUnavailable.
type GuardedInteractions struct {
	next    InteractionGateway
	timeout time.Duration
	breaker *resilience.Breaker
}

// GuardInteractions wraps an interaction gateway.
func GuardInteractions(next InteractionGateway, timeout time.Duration, cfg resilience.BreakerConfig) *GuardedInteractions {
	return &GuardedInteractions{
		next:    next,
		timeout: timeout,
		breaker: resilience.NewBreaker("interaction-gateway", cfg),
	}
}

// GetInteractions implements InteractionGateway.
func (g *GuardedInteractions) GetInteractions(ctx context.Context, userID string, window time.Duration) ([]Event, error) {
	return guard(ctx, g.breaker, g.timeout, "interactions", "get_interactions", func(ctx context.Context) ([]Event, error) {
		return g.next.GetInteractions(ctx, userID, window)
	})
}

// ListInteractions implements InteractionGateway. Bulk reads are bounded
// by the caller's context rather than the per-call timeout.
func (g *GuardedInteractions) ListInteractions(ctx context.Context, window time.Duration) ([]Event, error) {
	return guard(ctx, g.breaker, 0, "interactions", "list_interactions", func(ctx context.Context) ([]Event, error) {
		return g.next.ListInteractions(ctx, window)
	})
}

// GuardedContent is the ContentGateway counterpart of GuardedInteractions.
// Not-found answers do not count against the breaker.
type GuardedContent struct {
	next    ContentGateway
	timeout time.Duration
	breaker *resilience.Breaker
}

// GuardContent wraps a content gateway.
func GuardContent(next ContentGateway, timeout time.Duration, cfg resilience.BreakerConfig) *GuardedContent {
	return &GuardedContent{
		next:    next,
		timeout: timeout,
		breaker: resilience.NewBreaker("content-gateway", cfg, ErrContentNotFound),
	}
}

// GetContentFeatures implements ContentGateway.
func (g *GuardedContent) GetContentFeatures(ctx context.Context, contentID string) (*ContentFeatureProfile, error) {
	return guard(ctx, g.breaker, g.timeout, "content", "get_content_features", func(ctx context.Context) (*ContentFeatureProfile, error) {
		return g.next.GetContentFeatures(ctx, contentID)
	})
}

// ListCatalog implements ContentGateway.
func (g *GuardedContent) ListCatalog(ctx context.Context, filter CatalogFilter) ([]ContentFeatureProfile, error) {
	return guard(ctx, g.breaker, g.timeout, "content", "list_catalog", func(ctx context.Context) ([]ContentFeatureProfile, error) {
		return g.next.ListCatalog(ctx, filter)
	})
}

func guard[T any](ctx context.Context, b *resilience.Breaker, timeout time.Duration, gateway, op string, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := resilience.Execute(b, func() (T, error) {
		return fn(ctx)
	})
	metrics.RecordGatewayCall(gateway, op, time.Since(start), err)

	if err == nil {
		return out, nil
	}
	var zero T
	switch {
	case errors.Is(err, ErrContentNotFound):
		return zero, err
	case errors.Is(err, context.Canceled):
		// Caller went away; keep the cancellation visible.
		return zero, err
	default:
		return zero, newError(ErrUpstreamUnavailable, gateway+"."+op, err)
	}
}

var (
	_ InteractionGateway = (*GuardedInteractions)(nil)
	_ ContentGateway     = (*GuardedContent)(nil)
)
