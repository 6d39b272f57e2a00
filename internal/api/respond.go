// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/models"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/validation"
)

// respondData writes a success envelope. GET responses carry an ETag and
// answer a matching If-None-Match with 304.
func respondData(w http.ResponseWriter, r *http.Request, status int, data any, start time.Time, cached bool) {
	resp := &models.APIResponse{
		Success: true,
		Data:    data,
		Metadata: &models.Metadata{
			Timestamp:   time.Now().UTC(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	}

	if r.Method != http.MethodGet {
		models.WriteJSON(w, r, status, resp)
		return
	}

	// The ETag covers the data only; metadata changes on every call.
	body, err := json.Marshal(data)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response data")
		models.WriteError(w, r, http.StatusInternalServerError, models.CodeInternal, "failed to encode response")
		return
	}
	etag := generateETag(body)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	models.WriteJSON(w, r, status, resp)
}

// generateETag returns a strong ETag over data.
func generateETag(data []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(data), 16) + `"`
}

// respondErr maps err to a status code and writes a failure envelope.
// Internal details are logged, not returned.
func respondErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, msg := classify(err)
	ev := logging.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		ev = logging.Ctx(r.Context()).Error()
	}
	ev.Err(err).Str("op", op).Str("error_kind", recommend.KindName(err)).Int("status", status).Msg("request failed")
	models.WriteError(w, r, status, code, msg)
}

func classify(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidParameter):
		return http.StatusBadRequest, models.CodeInvalidParameter, err.Error()
	case errors.Is(err, recommend.ErrContentNotFound):
		return http.StatusNotFound, models.CodeNotFound, "content not found"
	case errors.Is(err, recommend.ErrTrainingInProgress):
		return http.StatusConflict, models.CodeConflict, "training already in progress"
	case errors.Is(err, recommend.ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, models.CodeUpstreamUnavailable, "recommendation service temporarily unavailable"
	default:
		return http.StatusInternalServerError, models.CodeInternal, "internal error"
	}
}

// respondValidation writes a 400 listing the failed struct constraints.
func respondValidation(w http.ResponseWriter, r *http.Request, ve *validation.RequestValidationError) {
	apiErr := ve.ToAPIError()
	models.WriteError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message)
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &recommend.Error{Kind: recommend.ErrInvalidParameter, Op: "body", Err: errEmptyBody}
		}
		return recommend.InvalidParameter("body", "malformed JSON: %v", err)
	}
	return nil
}

const maxBodyBytes = 64 << 10

var errEmptyBody = errors.New("request body is required")
