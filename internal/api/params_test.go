// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"errors"
	"net/url"
	"testing"

	"github.com/tomtom215/curator/internal/recommend"
)

func TestParseOptionsDefaults(t *testing.T) {
	t.Parallel()

	opts, err := parseOptions(url.Values{})
	if err != nil {
		t.Fatalf("parseOptions() error = %v", err)
	}
	if opts != recommend.DefaultOptions() {
		t.Errorf("parseOptions() = %+v, want defaults %+v", opts, recommend.DefaultOptions())
	}
}

func TestParseOptionsOverrides(t *testing.T) {
	t.Parallel()

	q := url.Values{
		"limit":              {"7"},
		"minScore":           {"0"},
		"excludeViewed":      {"false"},
		"excludePurchased":   {"0"},
		"useContentBased":    {"false"},
		"contentBasedWeight": {"0.5"},
		"category":           {" video "},
	}
	opts, err := parseOptions(q)
	if err != nil {
		t.Fatalf("parseOptions() error = %v", err)
	}
	if opts.Limit != 7 || opts.MinScore != 0 || opts.ContentBasedWeight != 0.5 {
		t.Errorf("numbers = %+v", opts)
	}
	if opts.ExcludeViewed || opts.ExcludePurchased || opts.UseContentBased {
		t.Errorf("flags = %+v, want all false", opts)
	}
	if opts.Category != "video" {
		t.Errorf("Category = %q, want video", opts.Category)
	}
}

func TestParseLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 20, false},
		{"1", 1, false},
		{"100", 100, false},
		{"0", 0, true},
		{"101", 0, true},
		{"1.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			q := url.Values{}
			if tt.raw != "" {
				q.Set("limit", tt.raw)
			}
			got, err := parseLimit(q)
			if tt.wantErr {
				if !errors.Is(err, recommend.ErrInvalidParameter) {
					t.Errorf("parseLimit(%q) error = %v, want invalid parameter", tt.raw, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("parseLimit(%q) = %d, %v, want %d", tt.raw, got, err, tt.want)
			}
		})
	}
}
