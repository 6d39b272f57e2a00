// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	"math"
	"time"

	"github.com/tomtom215/curator/internal/recommend"
)

// Ranker is the advanced multi-signal ranker.
type Ranker struct {
	weights  recommend.RankerWeights
	halfLife time.Duration
	now      func() time.Time
}

// NewRanker creates a ranker. halfLife is the content age at which the
// freshness signal drops to one half.
func NewRanker(weights recommend.RankerWeights, halfLife time.Duration) *Ranker {
	return &Ranker{weights: weights, halfLife: halfLife, now: time.Now}
}

// Rank computes signals for every candidate, replaces its score with the
// weighted sum and returns a new, sorted slice.
func (r *Ranker) Rank(candidates []recommend.Candidate) []recommend.Candidate {
	n := len(candidates)
	out := make([]recommend.Candidate, n)
	copy(out, candidates)
	if n == 0 {
		return out
	}

	views := make([]float64, n)
	purchases := make([]float64, n)
	ratings := make([]float64, n)
	purchaseRates := make([]float64, n)
	revenue := make([]float64, n)
	sales := make([]float64, n)
	followers := make([]float64, n)
	creatorRatings := make([]float64, n)
	for i := range out {
		p := out[i].Profile
		if p == nil {
			continue
		}
		views[i] = float64(p.Stats.Views)
		purchases[i] = float64(p.Stats.Purchases)
		ratings[i] = p.Stats.Rating
		purchaseRates[i] = p.Stats.PurchaseRate()
		revenue[i] = p.Creator.Revenue
		sales[i] = float64(p.Creator.Sales)
		followers[i] = float64(p.Creator.Followers)
		creatorRatings[i] = p.Creator.Rating
	}

	w := r.weights
	nViews, nPurchases := recommend.MinMax(views), recommend.MinMax(purchases)
	nRatings, nRates := recommend.MinMax(ratings), recommend.MinMax(purchaseRates)
	nRevenue, nSales := recommend.MinMax(revenue), recommend.MinMax(sales)
	nFollowers, nCreatorRatings := recommend.MinMax(followers), recommend.MinMax(creatorRatings)

	now := r.now()
	for i := range out {
		sig := &recommend.RankingSignals{
			Base:       recommend.Clamp01(out[i].Score),
			Popularity: w.PopularityViews*nViews[i] + w.PopularityPurchases*nPurchases[i],
			Engagement: w.EngagementRating*nRatings[i] + w.EngagementPurchaseRate*nRates[i],
			CreatorReputation: w.ReputationRevenue*nRevenue[i] + w.ReputationSales*nSales[i] +
				w.ReputationFollowers*nFollowers[i] + w.ReputationRating*nCreatorRatings[i],
		}
		if p := out[i].Profile; p != nil {
			sig.Freshness = r.freshness(p.Stats.PublishedAt, now)
		}

		out[i].Signals = sig
		out[i].Score = recommend.Clamp01(w.Base*sig.Base + w.Popularity*sig.Popularity +
			w.Freshness*sig.Freshness + w.Engagement*sig.Engagement +
			w.CreatorReputation*sig.CreatorReputation)
	}

	recommend.SortCandidates(out)
	return out
}

// freshness is exp(-ln2 * age / halfLife): 1 for new content, 0.5 after
// one half-life. Unknown publication dates score 0.
func (r *Ranker) freshness(published, now time.Time) float64 {
	if published.IsZero() || r.halfLife <= 0 {
		return 0
	}
	age := now.Sub(published)
	if age < 0 {
		age = 0
	}
	lambda := math.Ln2 / r.halfLife.Hours()
	return recommend.Clamp01(math.Exp(-lambda * age.Hours()))
}

var _ recommend.Ranker = (*Ranker)(nil)
