// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"runtime"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/curator/internal/recommend"
)

// Feature names reported by SimilarByFeatures.
const (
	FeatureCategory    = "category"
	FeatureTags        = "tags"
	FeatureFileType    = "fileType"
	FeatureCreator     = "creator"
	FeatureFingerprint = "fingerprint"
)

// fingerprintMatch is the similarity at which fingerprints count as a
// matched feature.
const fingerprintMatch = 0.8

// ContentConfig configures the content-feature engine.
type ContentConfig struct {
	Weights       recommend.ContentWeights
	MinSimilarity float64
	Workers       int
}

// DefaultContentConfig returns the production content configuration.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{
		Weights:       recommend.DefaultWeights().Content,
		MinSimilarity: 0.1,
		Workers:       runtime.NumCPU(),
	}
}

// Content is the content-feature engine. It needs no interaction data
// beyond the requesting user's own history.
type Content struct {
	cfg ContentConfig
}

// NewContent creates a content-feature engine.
func NewContent(cfg ContentConfig) *Content {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Content{cfg: cfg}
}

// Method implements recommend.Engine.
func (e *Content) Method() recommend.Method { return recommend.MethodContentBased }

// Train prepares per-item feature sets.
func (e *Content) Train(ctx context.Context, ds *recommend.Dataset) (recommend.Model, error) {
	m := &contentModel{
		cfg:     e.cfg,
		catalog: ds.Catalog,
		items:   make([]*itemFeatures, 0, len(ds.Catalog)),
		byID:    make(map[string]*itemFeatures, len(ds.Catalog)),
	}
	for _, p := range ds.Catalog {
		if cancelled(ctx) {
			return nil, ctx.Err()
		}
		f := newItemFeatures(p)
		m.items = append(m.items, f)
		m.byID[p.ContentID] = f
	}
	sort.Slice(m.items, func(i, j int) bool {
		return m.items[i].profile.ContentID < m.items[j].profile.ContentID
	})
	return m, nil
}

type itemFeatures struct {
	profile *recommend.ContentFeatureProfile
	tags    mapset.Set[string]
}

func newItemFeatures(p *recommend.ContentFeatureProfile) *itemFeatures {
	return &itemFeatures{profile: p, tags: mapset.NewThreadUnsafeSet(p.Tags...)}
}

type contentModel struct {
	cfg     ContentConfig
	catalog map[string]*recommend.ContentFeatureProfile
	items   []*itemFeatures
	byID    map[string]*itemFeatures
}

func (m *contentModel) Method() recommend.Method { return recommend.MethodContentBased }

// similarity scores a against b and lists the features that matched.
func (m *contentModel) similarity(a, b *itemFeatures) (float64, []string) {
	w := m.cfg.Weights
	var score float64
	var matched []string

	if a.profile.Category != "" && a.profile.Category == b.profile.Category {
		score += w.Category
		matched = append(matched, FeatureCategory)
	}
	if tc := TagCosine(a.tags, b.tags); tc > 0 {
		score += w.Tags * tc
		matched = append(matched, FeatureTags)
	}
	if a.profile.FileType != "" && a.profile.FileType == b.profile.FileType {
		score += w.FileType
		matched = append(matched, FeatureFileType)
	}
	if a.profile.CreatorID != "" && a.profile.CreatorID == b.profile.CreatorID {
		score += w.Creator
		matched = append(matched, FeatureCreator)
	}
	if fp := FingerprintSimilarity(a.profile.Fingerprint, b.profile.Fingerprint); fp > 0 {
		score += w.Fingerprint * fp
		if fp >= fingerprintMatch {
			matched = append(matched, FeatureFingerprint)
		}
	}
	return clamp01(score), matched
}

// historyItem is one entry of the user content profile.
type historyItem struct {
	features *itemFeatures
	weight   float64
}

// Recommend scores every admitted catalog item by its interaction-weighted
// average similarity to the user's history.
func (m *contentModel) Recommend(ctx context.Context, q *recommend.Query) ([]recommend.SimilarityScore, error) {
	profile := make([]historyItem, 0, len(q.History))
	var total float64
	for id, w := range q.History {
		if f, ok := m.byID[id]; ok {
			profile = append(profile, historyItem{features: f, weight: w})
			total += w
		}
	}
	if total == 0 {
		return nil, nil
	}

	scores := make([]float64, len(m.items))
	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(m.items) + m.cfg.Workers - 1) / m.cfg.Workers
	for start := 0; start < len(m.items); start += chunk {
		end := min(start+chunk, len(m.items))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if cancelled(gctx) {
					return gctx.Err()
				}
				c := m.items[i]
				if !q.Admits(c.profile.ContentID, m.catalog) {
					continue
				}
				var sum float64
				for _, h := range profile {
					if h.features == c {
						continue
					}
					s, _ := m.similarity(c, h.features)
					sum += s * h.weight
				}
				scores[i] = sum / total
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for i, s := range scores {
		if s >= m.cfg.MinSimilarity {
			out[m.items[i].profile.ContentID] = s
		}
	}
	return accumulate(q.UserID, recommend.MethodContentBased, out, q.Limit), nil
}

// SimilarByFeatures compares target with every other catalog item. target
// need not be part of the trained catalog.
func (m *contentModel) SimilarByFeatures(ctx context.Context, target *recommend.ContentFeatureProfile, limit int) ([]recommend.FeatureMatch, error) {
	t := newItemFeatures(target)
	out := make([]recommend.FeatureMatch, 0)
	for _, c := range m.items {
		if c.profile.ContentID == target.ContentID {
			continue
		}
		if cancelled(ctx) {
			return nil, ctx.Err()
		}
		s, matched := m.similarity(t, c)
		if s < m.cfg.MinSimilarity {
			continue
		}
		out = append(out, recommend.FeatureMatch{
			SimilarityScore: recommend.SimilarityScore{
				SubjectID:   target.ContentID,
				CandidateID: c.profile.ContentID,
				Score:       s,
				Method:      recommend.MethodContentBased,
			},
			MatchedFeatures: matched,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CandidateID < out[j].CandidateID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var (
	_ recommend.Engine       = (*Content)(nil)
	_ recommend.FeatureModel = (*contentModel)(nil)
)
