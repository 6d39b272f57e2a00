// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
)

const favoritesLimit = 3

// Summarize describes the preferences visible in a user's events. The
// catalog supplies categories, creators and ratings; unknown content only
// counts toward InteractionCount.
func Summarize(events []Event, catalog map[string]*ContentFeatureProfile) *UserSummary {
	vec := BuildVector(events)

	categories := make(map[string]float64)
	creators := make(map[string]float64)
	var ratingSum float64
	var rated int
	for id, w := range vec {
		p, ok := catalog[id]
		if !ok {
			continue
		}
		if p.Category != "" {
			categories[p.Category] += w
		}
		if p.CreatorID != "" {
			creators[p.CreatorID] += w
		}
		if p.Stats.Rating > 0 {
			ratingSum += p.Stats.Rating
			rated++
		}
	}

	s := &UserSummary{
		FavoriteCategories: topKeys(categories, favoritesLimit),
		FavoriteCreators:   topKeys(creators, favoritesLimit),
		InteractionCount:   len(events),
	}
	if rated > 0 {
		s.AverageRating = math.Round(ratingSum/float64(rated)*100) / 100
	}
	return s
}

// topKeys returns the n heaviest keys, ties broken alphabetically.
func topKeys(m map[string]float64, n int) []string {
	keys := lo.Keys(m)
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// exclusions returns the content the options ask to hide from this user.
func exclusions(events []Event, opts *Options) mapset.Set[string] {
	out := mapset.NewThreadUnsafeSet[string]()
	for _, e := range events {
		switch {
		case opts.ExcludeViewed && e.Type == EventView:
			out.Add(e.ContentID)
		case opts.ExcludePurchased && e.Type == EventPurchase:
			out.Add(e.ContentID)
		}
	}
	return out
}
