// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"net/url"
	"strconv"

	"github.com/tomtom215/curator/internal/validation"
)

// MaxLimit is the largest list a caller may request.
const MaxLimit = 100

// Options are the caller-supplied knobs of one recommendation request.
// The zero value is not useful; start from DefaultOptions.
type Options struct {
	// Limit is the maximum number of candidates returned.
	// Default: 20.
	Limit int `json:"limit" validate:"min=1,max=100"`

	// MinScore drops candidates whose final score is below it.
	// Default: 0.1.
	MinScore float64 `json:"minScore" validate:"unit"`

	// ExcludeViewed drops content the user already viewed.
	// Default: true.
	ExcludeViewed bool `json:"excludeViewed"`

	// ExcludePurchased drops content the user already purchased.
	// Default: true.
	ExcludePurchased bool `json:"excludePurchased"`

	// DiversityFactor scales the diversity penalty.
	// Default: 0.3.
	DiversityFactor float64 `json:"diversityFactor" validate:"unit"`

	// UseContentBased enables the content-feature engine.
	// Default: true.
	UseContentBased bool `json:"useContentBased"`

	// ContentBasedWeight is the ensemble weight of the content engine.
	// Default: 0.3.
	ContentBasedWeight float64 `json:"contentBasedWeight" validate:"unit"`

	// Category restricts candidates to one category.
	Category string `json:"category,omitempty" validate:"omitempty,max=64"`

	// Filter is an optional CEL predicate evaluated per candidate.
	Filter string `json:"filter,omitempty" validate:"omitempty,max=512"`
}

// DefaultOptions returns the documented request defaults.
func DefaultOptions() Options {
	return Options{
		Limit:              20,
		MinScore:           0.1,
		ExcludeViewed:      true,
		ExcludePurchased:   true,
		DiversityFactor:    0.3,
		UseContentBased:    true,
		ContentBasedWeight: 0.3,
	}
}

// Validate checks the options once at the API boundary.
//
//nolint:gocritic // value receiver keeps options immutable
func (o Options) Validate() error {
	if err := validation.ValidateStruct(&o); err != nil {
		first := err.Errors()[0]
		return InvalidParameter(first.Field(), "%s", err.Error())
	}
	return nil
}

// EffectiveContentWeight is the content engine weight after applying
// UseContentBased.
//
//nolint:gocritic // value receiver keeps options immutable
func (o Options) EffectiveContentWeight() float64 {
	if !o.UseContentBased {
		return 0
	}
	return o.ContentBasedWeight
}

// Canonical serializes the options in a fixed order so that equal
// options always produce the same cache key.
//
//nolint:gocritic // value receiver keeps options immutable
func (o Options) Canonical() string {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(o.Limit))
	v.Set("minScore", formatFloat(o.MinScore))
	v.Set("excludeViewed", strconv.FormatBool(o.ExcludeViewed))
	v.Set("excludePurchased", strconv.FormatBool(o.ExcludePurchased))
	v.Set("diversityFactor", formatFloat(o.DiversityFactor))
	v.Set("useContentBased", strconv.FormatBool(o.UseContentBased))
	v.Set("contentBasedWeight", formatFloat(o.ContentBasedWeight))
	if o.Category != "" {
		v.Set("category", o.Category)
	}
	if o.Filter != "" {
		v.Set("filter", o.Filter)
	}
	// Encode sorts by key.
	return v.Encode()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
