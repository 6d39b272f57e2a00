// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package algorithms implements the three similarity engines of the hybrid
// recommender.
//
// # Engines
//
//   - UserBased: cosine similarity between sparse interaction vectors.
//     Neighbors contribute sim(u, v) * w(v, i) to each candidate i.
//   - ItemBased: Jaccard similarity over the users who interacted with
//     each item, precomputed at training time. Each history item h
//     contributes sim(h, i) * w(u, h).
//   - Content: weighted feature match between a candidate and every item
//     in the user's history, averaged by interaction weight:
//
//     sim(a, b) = 0.30 * category + 0.35 * tagCosine + 0.15 * fileType +
//     0.10 * creator + 0.10 * (1 - hamming(fingerprint))
//
// # Scores
//
// Every engine scales its output so that its best candidate scores 1 and
// all scores lie in [0, 1]. Pairs below the configured minimum similarity
// are discarded.
//
// # Thread Safety
//
// Engines are stateless. Train returns an immutable model that is safe for
// concurrent use without locking.
package algorithms
