// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"math"
	"math/bits"
	"runtime"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tomtom215/curator/internal/recommend"
)

// NeighborConfig configures the collaborative engines.
type NeighborConfig struct {
	// Neighbors is the number of similar users or items kept per subject.
	// Default: 50.
	Neighbors int

	// MinSimilarity discards weaker pairs.
	// Default: 0.1.
	MinSimilarity float64

	// Workers bounds training parallelism.
	// Default: runtime.NumCPU().
	Workers int
}

// DefaultNeighborConfig returns the default collaborative configuration.
func DefaultNeighborConfig() NeighborConfig {
	return NeighborConfig{
		Neighbors:     50,
		MinSimilarity: 0.1,
		Workers:       runtime.NumCPU(),
	}
}

func (c NeighborConfig) withDefaults() NeighborConfig {
	d := DefaultNeighborConfig()
	if c.Neighbors <= 0 {
		c.Neighbors = d.Neighbors
	}
	if c.MinSimilarity <= 0 {
		c.MinSimilarity = d.MinSimilarity
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// Cosine returns the cosine similarity of two sparse vectors given their
// norms. Non-negative weights keep the result in [0, 1].
func Cosine(a, b recommend.InteractionVector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for id, wa := range a {
		if wb, ok := b[id]; ok {
			dot += wa * wb
		}
	}
	return clamp01(dot / (normA * normB))
}

// Jaccard returns |a ∩ b| / |a ∪ b|, zero for two empty sets.
func Jaccard(a, b mapset.Set[string]) float64 {
	inter := a.Intersect(b).Cardinality()
	union := a.Cardinality() + b.Cardinality() - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// TagCosine is the cosine similarity of two tag-presence vectors.
func TagCosine(a, b mapset.Set[string]) float64 {
	if a.Cardinality() == 0 || b.Cardinality() == 0 {
		return 0
	}
	inter := a.Intersect(b).Cardinality()
	return float64(inter) / math.Sqrt(float64(a.Cardinality()*b.Cardinality()))
}

// FingerprintSimilarity is 1 minus the normalized Hamming distance. Bytes
// beyond the shorter fingerprint count as fully different; a missing
// fingerprint scores 0.
func FingerprintSimilarity(a, b []byte) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	dist := 8 * (len(b) - len(a))
	for i := range a {
		dist += bits.OnesCount8(a[i] ^ b[i])
	}
	return 1 - float64(dist)/float64(8*len(b))
}

func clamp01(v float64) float64 { return recommend.Clamp01(v) }

// cancelled reports whether ctx is done without blocking.
func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// accumulate turns a candidate score map into sorted, scaled scores.
func accumulate(subject string, m recommend.Method, scores map[string]float64, limit int) []recommend.SimilarityScore {
	out := make([]recommend.SimilarityScore, 0, len(scores))
	for id, s := range scores {
		if s > 0 {
			out = append(out, recommend.SimilarityScore{SubjectID: subject, CandidateID: id, Score: s, Method: m})
		}
	}
	recommend.ScaleToMax(out)
	return recommend.TopScores(out, limit)
}
