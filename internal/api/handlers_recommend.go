// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
)

// Recommendations handles GET /recommendations: the full hybrid pipeline.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p, ok := principal(w, r)
	if !ok {
		return
	}
	opts, err := parseOptions(r.URL.Query())
	if err != nil {
		respondErr(w, r, recommend.OpRecommendations, err)
		return
	}

	res, err := h.rec.GetRecommendations(r.Context(), p.UserID, opts)
	if err != nil {
		respondErr(w, r, recommend.OpRecommendations, err)
		return
	}
	respondData(w, r, http.StatusOK, models.NewRecommendationsData(res, opts), start, res.Source == recommend.SourceCache)
}

// FallbackRecommendations handles GET /recommendations/fallback.
func (h *Handler) FallbackRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p, ok := principal(w, r)
	if !ok {
		return
	}
	opts, err := parseOptions(r.URL.Query())
	if err != nil {
		respondErr(w, r, recommend.OpFallback, err)
		return
	}

	res, err := h.rec.Fallback(r.Context(), p.UserID, opts)
	if err != nil {
		respondErr(w, r, recommend.OpFallback, err)
		return
	}
	respondData(w, r, http.StatusOK, models.NewRecommendationsData(res, opts), start, false)
}

// EngineRecommendations returns the handler of a single-engine endpoint.
func (h *Handler) EngineRecommendations(m recommend.Method) http.HandlerFunc {
	op := "engine_" + string(m)
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		p, ok := principal(w, r)
		if !ok {
			return
		}
		opts, err := parseOptions(r.URL.Query())
		if err != nil {
			respondErr(w, r, op, err)
			return
		}

		res, err := h.rec.EngineRecommendations(r.Context(), p.UserID, m, opts)
		if err != nil {
			respondErr(w, r, op, err)
			return
		}
		respondData(w, r, http.StatusOK, models.NewRecommendationsData(res, opts), start, res.Source == recommend.SourceCache)
	}
}

// ABTest handles GET /recommendations/ab-test.
func (h *Handler) ABTest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p, ok := principal(w, r)
	if !ok {
		return
	}
	opts, err := parseOptions(r.URL.Query())
	if err != nil {
		respondErr(w, r, recommend.OpABTest, err)
		return
	}

	res, assignment, err := h.rec.ABRecommendations(r.Context(), p.UserID, opts)
	if err != nil {
		respondErr(w, r, recommend.OpABTest, err)
		return
	}

	data := models.NewRecommendationsData(res, opts)
	data.TestGroup = assignment.Bucket
	data.ExperimentID = assignment.ExperimentID
	respondData(w, r, http.StatusOK, data, start, res.Source == recommend.SourceCache)
}

// SimilarContent handles GET /recommendations/similar-content/{id}.
func (h *Handler) SimilarContent(w http.ResponseWriter, r *http.Request) {
	h.similarContent(w, r, recommend.OpSimilarContent, h.rec.SimilarContent)
}

// SimilarContentFeatures handles GET /recommendations/similar-content-features/{id}.
func (h *Handler) SimilarContentFeatures(w http.ResponseWriter, r *http.Request) {
	h.similarContent(w, r, recommend.OpSimilarByFeatures, h.rec.SimilarByFeatures)
}

type itemLookup func(ctx context.Context, contentID string, limit int) (*recommend.Result, error)

func (h *Handler) similarContent(w http.ResponseWriter, r *http.Request, op string, lookup itemLookup) {
	start := time.Now()
	id, err := contentIDParam(r)
	if err != nil {
		respondErr(w, r, op, err)
		return
	}
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		respondErr(w, r, op, err)
		return
	}

	res, err := lookup(r.Context(), id, limit)
	if err != nil {
		respondErr(w, r, op, err)
		return
	}
	cs := res.Candidates
	if cs == nil {
		cs = []recommend.Candidate{}
	}
	respondData(w, r, http.StatusOK, &models.SimilarContentData{
		ContentID:       id,
		Recommendations: cs,
		Count:           len(cs),
		Source:          res.Source,
		Options:         models.LimitOptions{Limit: limit},
	}, start, res.Source == recommend.SourceCache)
}

// SimilarUsers handles GET /recommendations/similar-users.
func (h *Handler) SimilarUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p, ok := principal(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r.URL.Query())
	if err != nil {
		respondErr(w, r, recommend.OpSimilarUsers, err)
		return
	}

	users, source, err := h.rec.SimilarUsers(r.Context(), p.UserID, limit)
	if err != nil {
		respondErr(w, r, recommend.OpSimilarUsers, err)
		return
	}
	if users == nil {
		users = []recommend.SimilarityScore{}
	}
	respondData(w, r, http.StatusOK, &models.SimilarUsersData{
		UserID:  p.UserID,
		Users:   users,
		Count:   len(users),
		Source:  source,
		Options: models.LimitOptions{Limit: limit},
	}, start, source == recommend.SourceCache)
}
