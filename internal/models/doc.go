// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package models defines the JSON bodies exchanged over the HTTP API.

Every response uses the APIResponse envelope:

	{"success": true, "data": {...}, "metadata": {"timestamp": "...", "requestId": "..."}}
	{"success": false, "error": "limit must be at most 100", "code": "INVALID_PARAMETER"}

List responses carry count and echo the effective options.
*/
package models
