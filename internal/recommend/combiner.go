// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import "fmt"

// Candidate reasons.
const (
	ReasonUserBased = "Users with similar taste interacted with this"
	ReasonItemBased = "Similar to content you interacted with"
	ReasonPopular   = "Popular right now"
	ReasonFeatured  = "Featured content"
)

// reasonFor returns the human-readable reason for a candidate whose
// dominant contribution came from m.
func reasonFor(m Method, p *ContentFeatureProfile) string {
	switch m {
	case MethodUserBased:
		return ReasonUserBased
	case MethodItemBased:
		return ReasonItemBased
	case MethodContentBased:
		if p != nil && p.Category != "" {
			return fmt.Sprintf("Matches your interest in %s", p.Category)
		}
		return ReasonItemBased
	default:
		return ReasonPopular
	}
}

// Combine merges per-engine score lists by content ID into one weighted
// candidate list. Only the engines present in methods take part, and their
// weights are rescaled to sum to one so that a single engine passes its
// scores through unchanged. Missing engines contribute zero.
func Combine(results map[Method][]SimilarityScore, methods []Method, weights EffectiveWeights, catalog map[string]*ContentFeatureProfile) []Candidate {
	var wsum float64
	for _, m := range methods {
		wsum += weights.Of(m)
	}
	if wsum <= 0 {
		return nil
	}

	type acc struct {
		score    float64
		scores   map[Method]float64
		dominant Method
		best     float64
	}
	byID := make(map[string]*acc)
	order := make([]string, 0)

	for _, m := range methods {
		w := weights.Of(m) / wsum
		if w <= 0 {
			continue
		}
		for _, s := range results[m] {
			a, ok := byID[s.CandidateID]
			if !ok {
				a = &acc{scores: make(map[Method]float64, len(methods))}
				byID[s.CandidateID] = a
				order = append(order, s.CandidateID)
			}
			contribution := w * clamp01(s.Score)
			a.score += contribution
			a.scores[m] = s.Score
			if contribution > a.best {
				a.best = contribution
				a.dominant = m
			}
		}
	}

	out := make([]Candidate, 0, len(order))
	for _, id := range order {
		a := byID[id]
		if a.dominant == "" {
			continue
		}
		out = append(out, newCandidate(id, clamp01(a.score), a.dominant, a.scores, catalog[id]))
	}
	SortCandidates(out)
	return out
}

// newCandidate builds a candidate with metadata taken from its profile.
func newCandidate(id string, score float64, m Method, scores map[Method]float64, p *ContentFeatureProfile) Candidate {
	c := Candidate{
		ContentID: id,
		Score:     score,
		Reason:    reasonFor(m, p),
		Metadata:  Metadata{Method: m, Scores: scores},
		Profile:   p,
	}
	if p != nil {
		c.Metadata.Category = p.Category
		c.Metadata.CreatorID = p.CreatorID
		c.Metadata.FileType = p.FileType
		c.Metadata.Tags = p.Tags
	}
	return c
}

// Ranker re-scores combined candidates.
type Ranker interface {
	Rank(candidates []Candidate) []Candidate
}

// Diversifier penalizes redundant candidates and truncates to limit.
type Diversifier interface {
	Diversify(candidates []Candidate, factor float64, limit int) []Candidate
}
