// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"fmt"
	"math"
)

// Weights is the immutable weights table for every pipeline stage.
// Components receive the sub-table they need at construction time.
type Weights struct {
	Combiner  CombinerWeights  `json:"combiner"`
	Content   ContentWeights   `json:"content"`
	Ranker    RankerWeights    `json:"ranker"`
	Diversity DiversityWeights `json:"diversity"`
	Fallback  FallbackWeights  `json:"fallback"`
}

// CombinerWeights is the nested form of the ensemble weights: the content
// engine takes Content and the remainder is split between the two
// collaborative engines by UserShare and ItemShare.
type CombinerWeights struct {
	// UserShare is the user-based share of the collaborative weight.
	UserShare float64 `json:"user_share"`

	// ItemShare is the item-based share of the collaborative weight.
	ItemShare float64 `json:"item_share"`

	// Content is the default content-based weight.
	Content float64 `json:"content"`
}

// EffectiveWeights is the flattened per-engine weight actually applied.
type EffectiveWeights struct {
	UserBased    float64 `json:"userBased"`
	ItemBased    float64 `json:"itemBased"`
	ContentBased float64 `json:"contentBased"`
}

// Effective flattens the nested weights for a given content weight.
// With the defaults this yields 0.42/0.28/0.30.
//
//nolint:gocritic // value receiver keeps the table immutable
func (w CombinerWeights) Effective(contentWeight float64) EffectiveWeights {
	contentWeight = clamp01(contentWeight)
	shareSum := w.UserShare + w.ItemShare
	if shareSum <= 0 {
		shareSum = 1
	}
	rest := 1 - contentWeight
	return EffectiveWeights{
		UserBased:    rest * w.UserShare / shareSum,
		ItemBased:    rest * w.ItemShare / shareSum,
		ContentBased: contentWeight,
	}
}

// soloWeights gives m the whole weight. Single-engine pipelines use it so
// blend settings such as a disabled content engine do not apply.
func soloWeights(m Method) EffectiveWeights {
	var e EffectiveWeights
	switch m {
	case MethodUserBased:
		e.UserBased = 1
	case MethodItemBased:
		e.ItemBased = 1
	case MethodContentBased:
		e.ContentBased = 1
	}
	return e
}

// Of returns the weight applied to a method.
func (e EffectiveWeights) Of(m Method) float64 {
	switch m {
	case MethodUserBased:
		return e.UserBased
	case MethodItemBased:
		return e.ItemBased
	case MethodContentBased:
		return e.ContentBased
	default:
		return 0
	}
}

// ContentWeights weights the features compared by the content engine.
type ContentWeights struct {
	Category    float64 `json:"category"`
	Tags        float64 `json:"tags"`
	FileType    float64 `json:"file_type"`
	Creator     float64 `json:"creator"`
	Fingerprint float64 `json:"fingerprint"`
}

// RankerWeights weights the ranking signals and their sub-components.
type RankerWeights struct {
	Base              float64 `json:"base"`
	Popularity        float64 `json:"popularity"`
	Freshness         float64 `json:"freshness"`
	Engagement        float64 `json:"engagement"`
	CreatorReputation float64 `json:"creator_reputation"`

	PopularityViews     float64 `json:"popularity_views"`
	PopularityPurchases float64 `json:"popularity_purchases"`

	EngagementRating       float64 `json:"engagement_rating"`
	EngagementPurchaseRate float64 `json:"engagement_purchase_rate"`

	ReputationRevenue   float64 `json:"reputation_revenue"`
	ReputationSales     float64 `json:"reputation_sales"`
	ReputationFollowers float64 `json:"reputation_followers"`
	ReputationRating    float64 `json:"reputation_rating"`
}

// DiversityWeights weights the redundancy factors of the diversity pass.
type DiversityWeights struct {
	Category float64 `json:"category"`
	Creator  float64 `json:"creator"`
	Tags     float64 `json:"tags"`
	Method   float64 `json:"method"`
}

// FallbackWeights weights the popularity fallback score.
type FallbackWeights struct {
	Views float64 `json:"views"`
	Likes float64 `json:"likes"`

	// FreshnessBonus is the maximum relative bonus for brand-new content.
	FreshnessBonus float64 `json:"freshness_bonus"`
}

// DefaultWeights returns the production weights table.
func DefaultWeights() Weights {
	return Weights{
		Combiner: CombinerWeights{UserShare: 0.6, ItemShare: 0.4, Content: 0.3},
		Content: ContentWeights{
			Category:    0.30,
			Tags:        0.35,
			FileType:    0.15,
			Creator:     0.10,
			Fingerprint: 0.10,
		},
		Ranker: RankerWeights{
			Base:                   0.60,
			Popularity:             0.15,
			Freshness:              0.10,
			Engagement:             0.10,
			CreatorReputation:      0.05,
			PopularityViews:        0.4,
			PopularityPurchases:    0.6,
			EngagementRating:       0.5,
			EngagementPurchaseRate: 0.5,
			ReputationRevenue:      0.3,
			ReputationSales:        0.3,
			ReputationFollowers:    0.2,
			ReputationRating:       0.2,
		},
		Diversity: DiversityWeights{Category: 0.3, Creator: 0.2, Tags: 0.3, Method: 0.2},
		Fallback:  FallbackWeights{Views: 0.7, Likes: 0.3, FreshnessBonus: 0.2},
	}
}

// Validate checks that every table sums to one and all weights are
// non-negative.
//
//nolint:gocritic // value receiver keeps the table immutable
func (w Weights) Validate() error {
	checks := []struct {
		name   string
		values []float64
	}{
		{"combiner shares", []float64{w.Combiner.UserShare, w.Combiner.ItemShare}},
		{"content features", []float64{w.Content.Category, w.Content.Tags, w.Content.FileType, w.Content.Creator, w.Content.Fingerprint}},
		{"ranker signals", []float64{w.Ranker.Base, w.Ranker.Popularity, w.Ranker.Freshness, w.Ranker.Engagement, w.Ranker.CreatorReputation}},
		{"popularity", []float64{w.Ranker.PopularityViews, w.Ranker.PopularityPurchases}},
		{"engagement", []float64{w.Ranker.EngagementRating, w.Ranker.EngagementPurchaseRate}},
		{"creator reputation", []float64{w.Ranker.ReputationRevenue, w.Ranker.ReputationSales, w.Ranker.ReputationFollowers, w.Ranker.ReputationRating}},
		{"diversity", []float64{w.Diversity.Category, w.Diversity.Creator, w.Diversity.Tags, w.Diversity.Method}},
		{"fallback", []float64{w.Fallback.Views, w.Fallback.Likes}},
	}

	for _, c := range checks {
		var sum float64
		for _, v := range c.values {
			if v < 0 {
				return fmt.Errorf("%s weights must be non-negative, got %f", c.name, v)
			}
			sum += v
		}
		if math.Abs(sum-1) > 1e-6 {
			return fmt.Errorf("%s weights must sum to 1, got %f", c.name, sum)
		}
	}

	if w.Combiner.Content < 0 || w.Combiner.Content > 1 {
		return fmt.Errorf("combiner content weight must be in [0, 1], got %f", w.Combiner.Content)
	}
	if w.Fallback.FreshnessBonus < 0 || w.Fallback.FreshnessBonus > 1 {
		return fmt.Errorf("fallback freshness bonus must be in [0, 1], got %f", w.Fallback.FreshnessBonus)
	}
	return nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
