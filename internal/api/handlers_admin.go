// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/curator/internal/authz"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/validation"
)

// ClearCache handles DELETE /recommendations/cache. Callers allowed to
// clear all entries flush the whole cache, or one user's entries when
// userId is given. Everyone else clears their own entries.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	const op = "clear_cache"
	start := time.Now()
	p, ok := principal(w, r)
	if !ok {
		return
	}

	target := r.URL.Query().Get("userId")
	admin := h.permissions != nil && h.permissions.Allowed(r, authz.ObjectCache, authz.ActionClearAll)

	if admin && target == "" {
		if err := h.rec.FlushCache(r.Context()); err != nil {
			respondErr(w, r, op, err)
			return
		}
		logging.Ctx(r.Context()).Info().Msg("recommendation cache flushed")
		respondData(w, r, http.StatusOK, &models.CacheClearData{Scope: "all"}, start, false)
		return
	}

	switch {
	case target == "":
		target = p.UserID
	case target != p.UserID && !admin:
		models.WriteError(w, r, http.StatusForbidden, models.CodeForbidden, "cannot clear another user's cache")
		return
	case !validation.IsIdentifier(target):
		respondErr(w, r, op, recommend.InvalidParameter("userId", "malformed user id %q", target))
		return
	}

	removed, err := h.rec.InvalidateUser(r.Context(), target)
	if err != nil {
		respondErr(w, r, op, err)
		return
	}
	respondData(w, r, http.StatusOK, &models.CacheClearData{Scope: "user", UserID: target, Removed: removed}, start, false)
}

// Performance handles GET /recommendations/performance.
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, h.rec.Performance(), time.Now(), false)
}

// Status handles GET /recommendations/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, h.rec.TrainingStatus(), time.Now(), false)
}

// Train handles POST /recommendations/train. Training runs in the
// background; the response only acknowledges that it started.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	const op = "train"
	start := time.Now()

	if h.rec.TrainingStatus().Training {
		respondErr(w, r, op, &recommend.Error{Kind: recommend.ErrTrainingInProgress, Op: op})
		return
	}
	if !h.trainLimiter.Allow() {
		w.Header().Set("Retry-After", "60")
		models.WriteError(w, r, http.StatusTooManyRequests, models.CodeRateLimited, "training was triggered too recently")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.cfg.TrainTimeout)
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		defer cancel()
		log := logging.Ctx(ctx)
		snap, err := h.rec.Train(ctx)
		switch {
		case errors.Is(err, recommend.ErrTrainingInProgress):
			log.Info().Msg("manual training skipped, a run is already in progress")
		case err != nil:
			log.Error().Err(err).Msg("manual training failed")
		default:
			log.Info().Int64("version", snap.Version).Dur("duration", snap.Duration).Msg("manual training completed")
		}
	}()

	respondData(w, r, http.StatusAccepted, &models.TrainData{
		Message: "training started",
		Status:  h.rec.TrainingStatus(),
	}, start, false)
}

// Evaluate handles POST /recommendations/evaluate. An empty body uses the
// default test set size.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	const op = "evaluate"
	start := time.Now()

	req := models.EvaluateRequest{TestSetSize: h.cfg.DefaultTestSetSize}
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondErr(w, r, op, err)
		return
	}
	if ve := validation.ValidateStruct(&req); ve != nil {
		respondValidation(w, r, ve)
		return
	}

	eval, err := h.rec.Evaluate(r.Context(), req.TestSetSize)
	if err != nil {
		respondErr(w, r, op, err)
		return
	}
	respondData(w, r, http.StatusOK, eval, start, false)
}

type healthChecker interface {
	Healthy() bool
}

// Health handles GET /health. It reports liveness and always answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.rec.Performance()
	data := &models.HealthData{
		Status:          "ok",
		Version:         h.cfg.Version,
		Uptime:          time.Since(h.startTime).Round(time.Second).String(),
		Training:        h.rec.TrainingStatus(),
		PipelineHealthy: report.Status == recommend.StatusHealthy,
	}
	if hc, ok := h.publisher.(healthChecker); ok {
		healthy := hc.Healthy()
		data.EventsHealthy = &healthy
	}
	respondData(w, r, http.StatusOK, data, time.Now(), false)
}
