// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tomtom215/curator/internal/recommend"
)

// Diversity is the diversity enforcer.
type Diversity struct {
	weights recommend.DiversityWeights
}

// NewDiversity creates a diversity enforcer.
func NewDiversity(weights recommend.DiversityWeights) *Diversity {
	return &Diversity{weights: weights}
}

// Diversify penalizes each candidate by its redundancy with the candidates
// ranked above it, re-sorts and truncates to limit (0 keeps all). The
// input is not modified.
func (d *Diversity) Diversify(candidates []recommend.Candidate, factor float64, limit int) []recommend.Candidate {
	out := make([]recommend.Candidate, len(candidates))
	copy(out, candidates)
	recommend.SortCandidates(out)

	factor = recommend.Clamp01(factor)
	if factor > 0 {
		categories := make(map[string]int)
		creators := make(map[string]int)
		methods := make(map[recommend.Method]int)
		seenTags := mapset.NewThreadUnsafeSet[string]()

		for i := range out {
			md := &out[i].Metadata
			penalty := d.penalty(i, md, categories, creators, methods, seenTags)
			out[i].Score = recommend.Clamp01(out[i].Score * (1 - penalty*factor))

			if md.Category != "" {
				categories[md.Category]++
			}
			if md.CreatorID != "" {
				creators[md.CreatorID]++
			}
			methods[md.Method]++
			seenTags.Append(md.Tags...)
		}
		recommend.SortCandidates(out)
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// penalty is the weighted redundancy of a candidate at position i, in
// [0, 1]. Each factor is the share of the i higher-ranked candidates (or of
// the candidate's own tags) that it repeats.
func (d *Diversity) penalty(i int, md *recommend.Metadata, categories, creators map[string]int, methods map[recommend.Method]int, seenTags mapset.Set[string]) float64 {
	if i == 0 {
		return 0
	}
	prior := float64(i)
	var p float64
	if md.Category != "" {
		p += d.weights.Category * float64(categories[md.Category]) / prior
	}
	if md.CreatorID != "" {
		p += d.weights.Creator * float64(creators[md.CreatorID]) / prior
	}
	if tags := mapset.NewThreadUnsafeSet(md.Tags...); tags.Cardinality() > 0 {
		overlap := tags.Intersect(seenTags).Cardinality()
		p += d.weights.Tags * float64(overlap) / float64(tags.Cardinality())
	}
	p += d.weights.Method * float64(methods[md.Method]) / prior
	return recommend.Clamp01(p)
}

var _ recommend.Diversifier = (*Diversity)(nil)
