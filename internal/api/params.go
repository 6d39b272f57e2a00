// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/validation"
)

// parseOptions reads the recommendation options from the query string.
// Absent parameters keep their defaults; malformed ones are rejected.
func parseOptions(q url.Values) (recommend.Options, error) {
	opts := recommend.DefaultOptions()

	ints := []struct {
		name string
		dst  *int
	}{
		{"limit", &opts.Limit},
	}
	for _, p := range ints {
		if err := parseInt(q, p.name, p.dst); err != nil {
			return opts, err
		}
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"minScore", &opts.MinScore},
		{"diversityFactor", &opts.DiversityFactor},
		{"contentBasedWeight", &opts.ContentBasedWeight},
	}
	for _, p := range floats {
		if err := parseFloat(q, p.name, p.dst); err != nil {
			return opts, err
		}
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"excludeViewed", &opts.ExcludeViewed},
		{"excludePurchased", &opts.ExcludePurchased},
		{"useContentBased", &opts.UseContentBased},
	}
	for _, p := range bools {
		if err := parseBool(q, p.name, p.dst); err != nil {
			return opts, err
		}
	}

	opts.Category = strings.TrimSpace(q.Get("category"))
	opts.Filter = strings.TrimSpace(q.Get("filter"))

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// parseLimit reads the limit of a limit-only endpoint.
func parseLimit(q url.Values) (int, error) {
	limit := recommend.DefaultOptions().Limit
	if err := parseInt(q, "limit", &limit); err != nil {
		return 0, err
	}
	if limit < 1 || limit > recommend.MaxLimit {
		return 0, recommend.InvalidParameter("limit", "must be between 1 and %d, got %d", recommend.MaxLimit, limit)
	}
	return limit, nil
}

func parseInt(q url.Values, name string, dst *int) error {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return recommend.InvalidParameter(name, "must be an integer, got %q", raw)
	}
	*dst = v
	return nil
}

func parseFloat(q url.Values, name string, dst *float64) error {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return recommend.InvalidParameter(name, "must be a number, got %q", raw)
	}
	*dst = v
	return nil
}

func parseBool(q url.Values, name string, dst *bool) error {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return recommend.InvalidParameter(name, "must be true or false, got %q", raw)
	}
	*dst = v
	return nil
}

// contentIDParam reads and validates the {id} URL parameter.
func contentIDParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if !validation.IsIdentifier(id) {
		return "", recommend.InvalidParameter("id", "malformed content id %q", id)
	}
	return id, nil
}
