// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package reranking implements the post-combination stages of the
// recommendation pipeline.
//
//	Engines -> Combiner -> Ranker -> Diversity -> Filter
//	(relevance)           (signals)  (redundancy)
//
// # Ranker
//
// The Ranker replaces each combined score with a weighted sum of five
// signals, each in [0, 1]:
//
//	final = 0.60*base + 0.15*popularity + 0.10*freshness +
//	        0.10*engagement + 0.05*creatorReputation
//
// Popularity, engagement and creator reputation are min-max normalized over
// the candidate batch. Freshness decays exponentially with content age.
//
// # Diversity
//
// Diversity walks the ranked list and penalizes each candidate for
// repeating the category, creator, tags or originating method of the
// candidates ranked above it:
//
//	adjusted = score * (1 - penalty * factor)
//
// and then re-sorts. A factor of 0 leaves the order untouched.
package reranking
