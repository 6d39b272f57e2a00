// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package models

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/logging"
)

// WriteJSON writes resp with the given status. Metadata is filled in from
// the request context when the caller left it empty.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	if resp.Metadata == nil {
		resp.Metadata = &Metadata{}
	}
	if resp.Metadata.Timestamp.IsZero() {
		resp.Metadata.Timestamp = time.Now().UTC()
	}
	if resp.Metadata.RequestID == "" {
		resp.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// WriteError writes a failure envelope.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, r, status, &APIResponse{Success: false, Error: message, Code: code})
}
