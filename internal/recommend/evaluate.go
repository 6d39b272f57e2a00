// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"

	"github.com/tomtom215/curator/internal/logging"
)

// EvaluationK is the list length scored by Evaluate.
const EvaluationK = 10

// MaxTestSetSize bounds the number of users an evaluation may hold out.
const MaxTestSetSize = 10000

// Evaluation is the offline quality of the full pipeline.
type Evaluation struct {
	TestSetSize    int     `json:"testSetSize"`
	UsersEvaluated int     `json:"usersEvaluated"`
	K              int     `json:"k"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1Score"`
	Coverage       float64 `json:"coverage"`
	DurationMs     int64   `json:"durationMs"`
}

// holdout is one evaluated user's split.
type holdout struct {
	userID string
	train  []Event
	test   mapset.Set[string]
}

// Evaluate holds out the most recent fifth (at least one) of the distinct
// content of up to testSetSize users, trains a private snapshot on the
// remaining events and measures how well the pipeline recovers the held-out
// content. The published snapshot is not touched.
func (o *Orchestrator) Evaluate(ctx context.Context, testSetSize int) (*Evaluation, error) {
	if testSetSize < 1 || testSetSize > MaxTestSetSize {
		return nil, InvalidParameter("testSetSize", "must be between 1 and %d, got %d", MaxTestSetSize, testSetSize)
	}
	start := o.now()

	events, err := o.interactions.ListInteractions(ctx, o.cfg.HistoryWindow)
	if err != nil {
		return nil, err
	}
	catalog, err := o.content.ListCatalog(ctx, CatalogFilter{})
	if err != nil {
		return nil, err
	}

	splits, trainEvents := splitHoldout(events, testSetSize)
	result := &Evaluation{TestSetSize: testSetSize, K: EvaluationK}
	if len(splits) == 0 {
		result.DurationMs = o.now().Sub(start).Milliseconds()
		return result, nil
	}

	snap, err := o.trainer.BuildSnapshot(ctx, BuildDataset(trainEvents, catalog, o.now()))
	if err != nil {
		return nil, err
	}

	weights := o.cfg.Weights.Combiner.Effective(o.cfg.Weights.Combiner.Content)
	recommended := mapset.NewThreadUnsafeSet[string]()
	var precision, recall float64
	for _, h := range splits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		history := BuildVector(h.train)
		q := &Query{
			UserID:  h.userID,
			History: history,
			Exclude: mapset.NewThreadUnsafeSet(lo.Keys(history)...),
			Limit:   o.cfg.MaxCandidates,
		}
		lists, err := o.runEngines(ctx, snap, q, Methods)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("user_id", h.userID).Msg("evaluation user skipped")
			continue
		}
		cs := o.diversifier.Diversify(o.ranker.Rank(Combine(lists, Methods, weights, snap.Catalog)), DefaultOptions().DiversityFactor, EvaluationK)

		hits := 0
		for _, c := range cs {
			recommended.Add(c.ContentID)
			if h.test.Contains(c.ContentID) {
				hits++
			}
		}
		if len(cs) > 0 {
			precision += float64(hits) / float64(len(cs))
		}
		recall += float64(hits) / float64(h.test.Cardinality())
		result.UsersEvaluated++
	}

	if n := float64(result.UsersEvaluated); n > 0 {
		result.Precision = round4(precision / n)
		result.Recall = round4(recall / n)
	}
	if p, r := result.Precision, result.Recall; p+r > 0 {
		result.F1 = round4(2 * p * r / (p + r))
	}
	if len(catalog) > 0 {
		result.Coverage = round4(float64(recommended.Cardinality()) / float64(len(catalog)))
	}
	result.DurationMs = o.now().Sub(start).Milliseconds()

	logging.Ctx(ctx).Info().
		Int("users", result.UsersEvaluated).
		Float64("precision", result.Precision).
		Float64("recall", result.Recall).
		Float64("coverage", result.Coverage).
		Msg("evaluation complete")
	return result, nil
}

// splitHoldout picks up to n users with at least two distinct content
// items, in user ID order, and removes their most recent content from the
// training events.
func splitHoldout(events []Event, n int) ([]holdout, []Event) {
	byUser := lo.GroupBy(events, func(e Event) string { return e.UserID })
	users := lo.Keys(byUser)
	sort.Strings(users)

	heldOut := make(map[string]mapset.Set[string])
	splits := make([]holdout, 0, min(n, len(users)))
	for _, userID := range users {
		if len(splits) == n {
			break
		}
		latest := latestByContent(byUser[userID])
		if len(latest) < 2 {
			continue
		}
		ids := lo.Keys(latest)
		sort.Slice(ids, func(i, j int) bool {
			if !latest[ids[i]].Equal(latest[ids[j]]) {
				return latest[ids[i]].After(latest[ids[j]])
			}
			return ids[i] < ids[j]
		})
		test := mapset.NewThreadUnsafeSet(ids[:max(1, len(ids)/5)]...)
		heldOut[userID] = test
		splits = append(splits, holdout{userID: userID, test: test})
	}

	train := make([]Event, 0, len(events))
	for _, e := range events {
		if t, ok := heldOut[e.UserID]; ok && t.Contains(e.ContentID) {
			continue
		}
		train = append(train, e)
	}
	for i := range splits {
		test := splits[i].test
		splits[i].train = lo.Filter(byUser[splits[i].userID], func(e Event, _ int) bool {
			return !test.Contains(e.ContentID)
		})
	}
	return splits, train
}

func latestByContent(events []Event) map[string]time.Time {
	out := make(map[string]time.Time)
	for _, e := range events {
		if !e.Type.Valid() {
			continue
		}
		if t, ok := out[e.ContentID]; !ok || e.Timestamp.After(t) {
			out[e.ContentID] = e.Timestamp
		}
	}
	return out
}

func round4(v float64) float64 {
	return float64(int64(v*10000+0.5)) / 10000
}
