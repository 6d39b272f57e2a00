// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type trackBody struct {
	ContentID string  `json:"contentId" validate:"required,identifier"`
	Kind      string  `json:"interactionType" validate:"required,oneof=view like share purchase"`
	Weight    float64 `json:"weight" validate:"unit"`
	Note      string  `json:"note,omitempty" validate:"omitempty,max=8"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     trackBody
		wantField string
		wantTag   string
	}{
		{
			name:  "valid",
			input: trackBody{ContentID: "content-1", Kind: "view", Weight: 0.5},
		},
		{
			name:      "missing content id",
			input:     trackBody{Kind: "view"},
			wantField: "contentId",
			wantTag:   "required",
		},
		{
			name:      "malformed content id",
			input:     trackBody{ContentID: "has space", Kind: "view"},
			wantField: "contentId",
			wantTag:   "identifier",
		},
		{
			name:      "unknown interaction",
			input:     trackBody{ContentID: "c1", Kind: "stare"},
			wantField: "interactionType",
			wantTag:   "oneof",
		},
		{
			name:      "weight above range",
			input:     trackBody{ContentID: "c1", Kind: "like", Weight: 1.5},
			wantField: "weight",
			wantTag:   "unit",
		},
		{
			name:      "long note",
			input:     trackBody{ContentID: "c1", Kind: "like", Note: "way too long"},
			wantField: "note",
			wantTag:   "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateStruct() expected error on %s", tt.wantField)
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("Expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	err := ValidateStruct(&trackBody{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "contentId is required") {
		t.Errorf("Message = %q, want it to mention contentId", apiErr.Message)
	}
	if !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("Message = %q, want joined messages for multiple fields", apiErr.Message)
	}
}

func TestUnitTag(t *testing.T) {
	t.Parallel()

	type weights struct {
		Factor float64 `json:"diversityFactor" validate:"unit"`
		Label  string  `json:"label" validate:"omitempty,unit"`
	}

	if err := ValidateStruct(&weights{Factor: 1}); err != nil {
		t.Errorf("factor 1: unexpected error %v", err)
	}
	err := ValidateStruct(&weights{Factor: -0.1})
	if err == nil {
		t.Fatal("factor -0.1: expected error")
	}
	if got := err.Error(); got != "diversityFactor must be between 0 and 1" {
		t.Errorf("message = %q", got)
	}
	if err := ValidateStruct(&weights{Factor: 0.5, Label: "x"}); err == nil || err.Errors()[0].Tag() != "unit" {
		t.Errorf("unit on a string field should fail, got %v", err)
	}
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"user-42", true},
		{"a", true},
		{"tenant:item_7@v2", true},
		{"", false},
		{"-leading", false},
		{"white space", false},
		{strings.Repeat("x", 129), false},
	}
	for _, tt := range tests {
		if got := IsIdentifier(tt.in); got != tt.want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
