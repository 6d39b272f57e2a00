// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package models

import "time"

// Error codes rendered in APIResponse.Code.
const (
	CodeInvalidParameter    = "INVALID_PARAMETER"
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUnauthorized        = "AUTHENTICATION_ERROR"
	CodeForbidden           = "AUTHORIZATION_ERROR"
	CodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// APIResponse is the envelope of every API response. Data is set on
// success, Error and Code on failure.
type APIResponse struct {
	Success  bool      `json:"success"`
	Data     any       `json:"data,omitempty"`
	Error    string    `json:"error,omitempty"`
	Code     string    `json:"code,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Metadata carries tracing and timing information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"requestId,omitempty"`
	QueryTimeMS int64     `json:"queryTimeMs,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}
