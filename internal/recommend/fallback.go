// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
)

// Fallback ranks the catalog by popularity and freshness. It needs no
// interaction history and fails only when the catalog cannot be read.
type Fallback struct {
	content ContentGateway
	weights FallbackWeights
	window  time.Duration
	now     func() time.Time
}

// NewFallback creates a fallback provider. window is the age after which
// content earns no freshness bonus.
func NewFallback(content ContentGateway, weights FallbackWeights, window time.Duration) *Fallback {
	return &Fallback{content: content, weights: weights, window: window, now: time.Now}
}

// Recommend returns up to limit candidates outside exclude. Every eligible
// item is ranked, engaged items first. An empty catalog yields an empty
// list.
func (f *Fallback) Recommend(ctx context.Context, exclude mapset.Set[string], category string, limit int) ([]Candidate, error) {
	catalog, err := f.content.ListCatalog(ctx, CatalogFilter{Category: category})
	if err != nil {
		return nil, err
	}

	pool := lo.Filter(catalog, func(p ContentFeatureProfile, _ int) bool {
		return exclude == nil || !exclude.Contains(p.ContentID)
	})
	if len(pool) == 0 {
		return []Candidate{}, nil
	}

	out, rest := f.popular(pool)
	if len(rest) > 0 {
		// Items popularity cannot tell apart follow newest first,
		// strictly below the lowest scored item.
		ceiling := 1.0
		if len(out) > 0 {
			n := float64(len(rest))
			ceiling = out[len(out)-1].Score * n / (n + 1)
		}
		out = append(out, recent(rest, ceiling)...)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// popular scores the pool by engagement. Items whose normalized
// engagement is zero are returned unscored in rest.
func (f *Fallback) popular(pool []ContentFeatureProfile) (out []Candidate, rest []ContentFeatureProfile) {
	views := make([]float64, len(pool))
	likes := make([]float64, len(pool))
	for i := range pool {
		views[i] = float64(pool[i].Stats.Views)
		likes[i] = float64(pool[i].Stats.Likes)
	}
	nv, nl := MinMax(views), MinMax(likes)

	now := f.now()
	maxBonus := f.weights.FreshnessBonus
	out = make([]Candidate, 0, len(pool))
	for i := range pool {
		base := f.weights.Views*nv[i] + f.weights.Likes*nl[i]
		if base <= 0 {
			rest = append(rest, pool[i])
			continue
		}
		bonus := maxBonus * f.freshness(pool[i].Stats.PublishedAt, now)
		// Dividing by the maximum multiplier keeps scores in [0, 1]
		// without changing the order.
		score := base * (1 + bonus) / (1 + maxBonus)

		p := &pool[i]
		out = append(out, newCandidate(p.ContentID, clamp01(score), MethodPopularity,
			map[Method]float64{MethodPopularity: clamp01(score)}, p))
	}
	SortCandidates(out)
	return out, rest
}

// freshness is 1 for content published now, falling linearly to 0 at the
// end of the window.
func (f *Fallback) freshness(published, now time.Time) float64 {
	if published.IsZero() || f.window <= 0 {
		return 0
	}
	age := now.Sub(published)
	if age < 0 {
		age = 0
	}
	return max(0, 1-float64(age)/float64(f.window))
}

// recent orders the pool newest first with scores falling evenly from
// ceiling.
func recent(pool []ContentFeatureProfile, ceiling float64) []Candidate {
	sorted := make([]ContentFeatureProfile, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Stats.PublishedAt, sorted[j].Stats.PublishedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return sorted[i].ContentID < sorted[j].ContentID
	})

	n := float64(len(sorted))
	out := make([]Candidate, len(sorted))
	for i := range sorted {
		score := ceiling * (1 - float64(i)/n)
		c := newCandidate(sorted[i].ContentID, score, MethodPopularity,
			map[Method]float64{MethodPopularity: score}, &sorted[i])
		c.Reason = ReasonFeatured
		out[i] = c
	}
	return out
}
