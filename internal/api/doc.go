// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package api serves the recommendation HTTP API with the chi router.

All endpoints live under /api/v1/recommendations and answer with the
models.APIResponse envelope:

	{"success": true, "data": {...}, "metadata": {...}}
	{"success": false, "error": "...", "code": "INVALID_PARAMETER"}

The two similar-content endpoints are public. Every other endpoint needs an
authenticated principal (see package auth) and a permission granted by the
RBAC policy (see package authz). /health and /metrics sit outside the API
prefix and are never rate limited.

Errors from the orchestrator map to status codes by kind:

	invalid parameter     400
	content not found     404
	training in progress  409
	upstream unavailable  503
	anything else         500
*/
package api
