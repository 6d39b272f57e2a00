// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tomtom215/curator/internal/recommend"
)

// UserBased implements user-based collaborative filtering.
//
// The target user's vector comes from the request, so a user's newest
// interactions count immediately; the other users come from the snapshot.
// Only users sharing at least one item with the target are compared.
type UserBased struct {
	cfg NeighborConfig
}

// NewUserBased creates a user-based engine.
func NewUserBased(cfg NeighborConfig) *UserBased {
	return &UserBased{cfg: cfg.withDefaults()}
}

// Method implements recommend.Engine.
func (e *UserBased) Method() recommend.Method { return recommend.MethodUserBased }

// Train indexes users by item.
func (e *UserBased) Train(ctx context.Context, ds *recommend.Dataset) (recommend.Model, error) {
	m := &userModel{
		cfg:       e.cfg,
		vectors:   ds.Vectors,
		norms:     make(map[string]float64, len(ds.Vectors)),
		itemUsers: make(map[string][]string),
		catalog:   ds.Catalog,
	}

	for userID, vec := range ds.Vectors {
		if cancelled(ctx) {
			return nil, ctx.Err()
		}
		m.norms[userID] = vec.Norm()
		for itemID := range vec {
			m.itemUsers[itemID] = append(m.itemUsers[itemID], userID)
		}
	}
	for _, users := range m.itemUsers {
		sort.Strings(users)
	}
	return m, nil
}

type userModel struct {
	cfg       NeighborConfig
	vectors   map[string]recommend.InteractionVector
	norms     map[string]float64
	itemUsers map[string][]string
	catalog   map[string]*recommend.ContentFeatureProfile
}

func (m *userModel) Method() recommend.Method { return recommend.MethodUserBased }

// neighbor is a similar user.
type neighbor struct {
	id  string
	sim float64
}

// neighbors returns up to cfg.Neighbors users at or above MinSimilarity.
func (m *userModel) neighbors(ctx context.Context, q *recommend.Query) ([]neighbor, error) {
	norm := q.History.Norm()
	if norm == 0 {
		return nil, nil
	}

	seen := mapset.NewThreadUnsafeSet[string](q.UserID)
	var out []neighbor
	for itemID := range q.History {
		for _, other := range m.itemUsers[itemID] {
			if !seen.Add(other) {
				continue
			}
			sim := Cosine(q.History, m.vectors[other], norm, m.norms[other])
			if sim >= m.cfg.MinSimilarity {
				out = append(out, neighbor{id: other, sim: sim})
			}
		}
		if cancelled(ctx) {
			return nil, ctx.Err()
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].sim != out[j].sim {
			return out[i].sim > out[j].sim
		}
		return out[i].id < out[j].id
	})
	if len(out) > m.cfg.Neighbors {
		out = out[:m.cfg.Neighbors]
	}
	return out, nil
}

// Recommend sums similarity-weighted neighbor interactions per candidate.
func (m *userModel) Recommend(ctx context.Context, q *recommend.Query) ([]recommend.SimilarityScore, error) {
	if len(q.History) == 0 {
		return nil, nil
	}
	nbs, err := m.neighbors(ctx, q)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64)
	for _, nb := range nbs {
		for itemID, w := range m.vectors[nb.id] {
			if q.Admits(itemID, m.catalog) {
				scores[itemID] += nb.sim * w
			}
		}
	}
	return accumulate(q.UserID, recommend.MethodUserBased, scores, q.Limit), nil
}

// SimilarUsers lists the nearest neighbors with their cosine similarity.
func (m *userModel) SimilarUsers(ctx context.Context, q *recommend.Query) ([]recommend.SimilarityScore, error) {
	nbs, err := m.neighbors(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]recommend.SimilarityScore, 0, len(nbs))
	for _, nb := range nbs {
		out = append(out, recommend.SimilarityScore{
			SubjectID:   q.UserID,
			CandidateID: nb.id,
			Score:       nb.sim,
			Method:      recommend.MethodUserBased,
		})
	}
	return recommend.TopScores(out, q.Limit), nil
}

var (
	_ recommend.Engine        = (*UserBased)(nil)
	_ recommend.NeighborModel = (*userModel)(nil)
)
