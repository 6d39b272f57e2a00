// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/curator/internal/eventprocessor"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/validation"
)

// TrackInteraction handles POST /recommendations/track-interaction.
//
// The interaction is persisted synchronously. Cache invalidation happens
// asynchronously through the event bus, or inline when no bus is wired or
// publishing fails.
func (h *Handler) TrackInteraction(w http.ResponseWriter, r *http.Request) {
	const op = "track_interaction"
	start := time.Now()
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req models.TrackInteractionRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondErr(w, r, op, err)
		return
	}
	if ve := validation.ValidateStruct(&req); ve != nil {
		respondValidation(w, r, ve)
		return
	}
	eventType, err := recommend.ParseEventType(req.InteractionType)
	if err != nil {
		respondErr(w, r, op, err)
		return
	}

	assignment := h.rec.Assign(p.UserID)
	if req.ExperimentID != "" {
		assignment.ExperimentID = req.ExperimentID
	}

	event := recommend.Event{
		UserID:    p.UserID,
		ContentID: req.ContentID,
		Type:      eventType,
		Timestamp: h.now().UTC(),
	}
	if err := h.recorder.RecordInteraction(r.Context(), event); err != nil {
		respondErr(w, r, op, fmt.Errorf("record interaction: %w", err))
		return
	}

	tracked := eventprocessor.NewInteractionTracked(event, assignment)
	h.propagate(r, tracked)

	respondData(w, r, http.StatusCreated, &models.TrackInteractionData{
		EventID:         tracked.EventID,
		ContentID:       event.ContentID,
		InteractionType: event.Type,
		ExperimentID:    assignment.ExperimentID,
		TestGroup:       assignment.Bucket,
		TrackedAt:       event.Timestamp,
	}, start, false)
}

// propagate publishes the interaction, invalidating the user's cached
// recommendations inline when the event cannot be published.
func (h *Handler) propagate(r *http.Request, ev *eventprocessor.InteractionTracked) {
	ctx := r.Context()
	if h.publisher != nil {
		err := h.publisher.PublishInteraction(ctx, ev)
		if err == nil {
			return
		}
		logging.Ctx(ctx).Warn().Err(err).Str("event_id", ev.EventID).Msg("publish failed, invalidating inline")
	}

	metrics.TrackedInteractions.WithLabelValues(ev.ExperimentID, string(ev.Bucket), string(ev.Type)).Inc()
	if _, err := h.rec.InvalidateUser(ctx, ev.UserID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", ev.UserID).Msg("cache invalidation failed")
	}
}
