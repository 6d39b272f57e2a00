// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
)

// Engine is a similarity engine. Train builds an immutable Model from a
// dataset; the model then answers requests until the next snapshot swap.
type Engine interface {
	// Method identifies the engine.
	Method() Method

	// Train precomputes the engine's similarity tables.
	Train(ctx context.Context, ds *Dataset) (Model, error)
}

// Model is the trained, read-only form of an Engine. Implementations must
// be safe for concurrent use.
type Model interface {
	Method() Method

	// Recommend scores candidates for the query's user. An empty history
	// yields an empty result, not an error. Scores lie in [0, 1].
	Recommend(ctx context.Context, q *Query) ([]SimilarityScore, error)
}

// NeighborModel is implemented by models that can list similar users.
type NeighborModel interface {
	Model
	SimilarUsers(ctx context.Context, q *Query) ([]SimilarityScore, error)
}

// ItemModel is implemented by models that can list co-interacted content.
type ItemModel interface {
	Model
	SimilarItems(ctx context.Context, contentID string, limit int) ([]SimilarityScore, error)
}

// FeatureModel is implemented by models that compare content features.
type FeatureModel interface {
	Model
	SimilarByFeatures(ctx context.Context, target *ContentFeatureProfile, limit int) ([]FeatureMatch, error)
}

// FeatureMatch is a similar-by-features result.
type FeatureMatch struct {
	SimilarityScore
	MatchedFeatures []string `json:"matchedFeatures"`
}

// Query is one user's request as seen by a Model.
type Query struct {
	UserID  string
	History InteractionVector

	// Exclude lists content that must not be scored.
	Exclude mapset.Set[string]

	// Category restricts candidates when non-empty.
	Category string

	// Limit caps the number of scores returned.
	Limit int
}

// Admits reports whether contentID may be scored for this query.
func (q *Query) Admits(contentID string, catalog map[string]*ContentFeatureProfile) bool {
	if q.Exclude != nil && q.Exclude.Contains(contentID) {
		return false
	}
	if q.Category == "" {
		return true
	}
	p, ok := catalog[contentID]
	return ok && p.Category == q.Category
}

// Dataset is the training input shared by every engine.
type Dataset struct {
	// Vectors maps user IDs to their interaction vectors.
	Vectors map[string]InteractionVector

	// Catalog maps content IDs to their feature profiles.
	Catalog map[string]*ContentFeatureProfile

	// BuiltAt is when the dataset was assembled.
	BuiltAt time.Time
}

// BuildDataset folds raw events and catalog profiles into a Dataset.
func BuildDataset(events []Event, catalog []ContentFeatureProfile, now time.Time) *Dataset {
	byUser := lo.GroupBy(events, func(e Event) string { return e.UserID })

	vectors := make(map[string]InteractionVector, len(byUser))
	for userID, evs := range byUser {
		if v := BuildVector(evs); len(v) > 0 {
			vectors[userID] = v
		}
	}

	profiles := make(map[string]*ContentFeatureProfile, len(catalog))
	for i := range catalog {
		profiles[catalog[i].ContentID] = &catalog[i]
	}

	return &Dataset{Vectors: vectors, Catalog: profiles, BuiltAt: now}
}

// Items returns the number of distinct content IDs with interactions.
func (d *Dataset) Items() int {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, v := range d.Vectors {
		for id := range v {
			seen.Add(id)
		}
	}
	return seen.Cardinality()
}

// safeCall runs fn and converts a panic into a ComputationFailure carrying
// the stack trace.
func safeCall[T any](op string, fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{
				Kind:  ErrComputationFailure,
				Op:    op,
				Err:   fmt.Errorf("panic: %v", r),
				Stack: string(debug.Stack()),
			}
		}
	}()
	return fn()
}
