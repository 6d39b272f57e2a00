// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/curator/internal/recommend"
)

// ItemBased implements item-based collaborative filtering with Jaccard
// similarity over the sets of users who interacted with each item. The
// item-item table is precomputed at training time.
type ItemBased struct {
	cfg NeighborConfig
}

// NewItemBased creates an item-based engine.
func NewItemBased(cfg NeighborConfig) *ItemBased {
	return &ItemBased{cfg: cfg.withDefaults()}
}

// Method implements recommend.Engine.
func (e *ItemBased) Method() recommend.Method { return recommend.MethodItemBased }

// Train computes the top neighbors of every item. Items are processed in
// parallel; each worker writes only its own slot of the result.
func (e *ItemBased) Train(ctx context.Context, ds *recommend.Dataset) (recommend.Model, error) {
	itemUsers := make(map[string]mapset.Set[string])
	for userID, vec := range ds.Vectors {
		for itemID := range vec {
			s, ok := itemUsers[itemID]
			if !ok {
				s = mapset.NewThreadUnsafeSet[string]()
				itemUsers[itemID] = s
			}
			s.Add(userID)
		}
	}

	items := lo.Keys(itemUsers)
	sort.Strings(items)
	table := make([][]itemNeighbor, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, itemID := range items {
		g.Go(func() error {
			if cancelled(gctx) {
				return gctx.Err()
			}
			table[i] = e.neighborsOf(itemID, itemUsers, ds.Vectors)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &itemModel{
		neighbors: make(map[string][]itemNeighbor, len(items)),
		catalog:   ds.Catalog,
	}
	for i, itemID := range items {
		if len(table[i]) > 0 {
			m.neighbors[itemID] = table[i]
		}
	}
	return m, nil
}

// neighborsOf finds co-interacted items of itemID and scores them. Sets
// are only read here, so sharing them across workers is safe.
func (e *ItemBased) neighborsOf(itemID string, itemUsers map[string]mapset.Set[string], vectors map[string]recommend.InteractionVector) []itemNeighbor {
	users := itemUsers[itemID]
	co := make(map[string]struct{})
	users.Each(func(userID string) bool {
		for other := range vectors[userID] {
			if other != itemID {
				co[other] = struct{}{}
			}
		}
		return false
	})

	out := make([]itemNeighbor, 0, len(co))
	for other := range co {
		sim := Jaccard(users, itemUsers[other])
		if sim >= e.cfg.MinSimilarity {
			out = append(out, itemNeighbor{id: other, sim: sim})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].sim != out[j].sim {
			return out[i].sim > out[j].sim
		}
		return out[i].id < out[j].id
	})
	if len(out) > e.cfg.Neighbors {
		out = out[:e.cfg.Neighbors]
	}
	return out
}

type itemNeighbor struct {
	id  string
	sim float64
}

type itemModel struct {
	neighbors map[string][]itemNeighbor
	catalog   map[string]*recommend.ContentFeatureProfile
}

func (m *itemModel) Method() recommend.Method { return recommend.MethodItemBased }

// Recommend sums item similarity times the user's weight for each
// history item.
func (m *itemModel) Recommend(ctx context.Context, q *recommend.Query) ([]recommend.SimilarityScore, error) {
	if len(q.History) == 0 {
		return nil, nil
	}
	scores := make(map[string]float64)
	for itemID, w := range q.History {
		for _, nb := range m.neighbors[itemID] {
			if q.Admits(nb.id, m.catalog) {
				scores[nb.id] += nb.sim * w
			}
		}
		if cancelled(ctx) {
			return nil, ctx.Err()
		}
	}
	return accumulate(q.UserID, recommend.MethodItemBased, scores, q.Limit), nil
}

// SimilarItems returns the precomputed neighbors of contentID with their
// raw Jaccard similarity.
func (m *itemModel) SimilarItems(_ context.Context, contentID string, limit int) ([]recommend.SimilarityScore, error) {
	nbs := m.neighbors[contentID]
	if limit > 0 && len(nbs) > limit {
		nbs = nbs[:limit]
	}
	out := make([]recommend.SimilarityScore, len(nbs))
	for i, nb := range nbs {
		out[i] = recommend.SimilarityScore{
			SubjectID:   contentID,
			CandidateID: nb.id,
			Score:       nb.sim,
			Method:      recommend.MethodItemBased,
		}
	}
	return out, nil
}

var (
	_ recommend.Engine    = (*ItemBased)(nil)
	_ recommend.ItemModel = (*itemModel)(nil)
)
