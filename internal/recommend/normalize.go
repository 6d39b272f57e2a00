// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import "math"

// MinMax rescales values to [0, 1] over the batch. When every value is
// equal the result is 1 for a positive batch and 0 otherwise, so that a
// batch of one still carries its signal.
func MinMax(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	for i, v := range values {
		switch {
		case span > 0:
			out[i] = (v - lo) / span
		case hi > 0:
			out[i] = 1
		}
	}
	return out
}

// ScaleToMax divides scores by the largest one so the best candidate of an
// engine scores 1. Non-positive batches are returned as zeros.
func ScaleToMax(scores []SimilarityScore) {
	var hi float64
	for _, s := range scores {
		hi = math.Max(hi, s.Score)
	}
	for i := range scores {
		if hi <= 0 {
			scores[i].Score = 0
			continue
		}
		scores[i].Score = clamp01(scores[i].Score / hi)
	}
}

// Clamp01 bounds v to [0, 1]; NaN maps to 0.
func Clamp01(v float64) float64 { return clamp01(v) }

// TopScores sorts scores and keeps the first limit. A non-positive limit
// keeps everything.
func TopScores(scores []SimilarityScore, limit int) []SimilarityScore {
	SortScores(scores)
	if limit > 0 && len(scores) > limit {
		return scores[:limit]
	}
	return scores
}
