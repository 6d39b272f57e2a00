// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package middleware provides the HTTP middleware shared by every route:
// request and correlation IDs, Prometheus request metrics and a structured
// access log. All middleware has the func(http.Handler) http.Handler shape
// used by chi.
package middleware
