// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// staticContent serves a fixed catalog.
type staticContent struct {
	profiles []ContentFeatureProfile
	err      error
}

func (s *staticContent) GetContentFeatures(_ context.Context, id string) (*ContentFeatureProfile, error) {
	for i := range s.profiles {
		if s.profiles[i].ContentID == id {
			return &s.profiles[i], nil
		}
	}
	return nil, newError(ErrContentNotFound, "get", nil)
}

func (s *staticContent) ListCatalog(_ context.Context, f CatalogFilter) ([]ContentFeatureProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []ContentFeatureProfile
	for _, p := range s.profiles {
		if f.Category == "" || p.Category == f.Category {
			out = append(out, p)
		}
	}
	return out, nil
}

var fallbackNow = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func newTestFallback(profiles ...ContentFeatureProfile) *Fallback {
	f := NewFallback(&staticContent{profiles: profiles}, DefaultWeights().Fallback, 30*24*time.Hour)
	f.now = func() time.Time { return fallbackNow }
	return f
}

func TestFallback_Popular(t *testing.T) {
	t.Parallel()

	f := newTestFallback(
		ContentFeatureProfile{ContentID: "hit", Category: "music", Stats: ContentStats{Views: 1000, Likes: 100, PublishedAt: fallbackNow}},
		ContentFeatureProfile{ContentID: "old-hit", Category: "music", Stats: ContentStats{Views: 1000, Likes: 100, PublishedAt: fallbackNow.AddDate(0, -3, 0)}},
		ContentFeatureProfile{ContentID: "niche", Category: "video", Stats: ContentStats{Views: 10, Likes: 1}},
		ContentFeatureProfile{ContentID: "dead", Category: "video", Stats: ContentStats{}},
	)

	out, err := f.Recommend(context.Background(), nil, "", 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// "dead" is the batch minimum on both counters and ranks last.
	if len(out) != 4 {
		t.Fatalf("got %v, want 4 items", out)
	}
	if out[0].ContentID != "hit" || math.Abs(out[0].Score-1) > 1e-9 {
		t.Errorf("first = %s/%v, want hit/1", out[0].ContentID, out[0].Score)
	}
	if out[1].ContentID != "old-hit" || math.Abs(out[1].Score-1/1.2) > 1e-9 {
		t.Errorf("second = %s/%v, want old-hit/%v", out[1].ContentID, out[1].Score, 1/1.2)
	}
	if out[2].ContentID != "niche" || math.Abs(out[2].Score-0.01/1.2) > 1e-9 {
		t.Errorf("third = %s/%v, want niche/%v", out[2].ContentID, out[2].Score, 0.01/1.2)
	}
	if out[3].ContentID != "dead" || out[3].Score <= 0 || out[3].Score >= out[2].Score {
		t.Errorf("fourth = %s/%v, want dead below %v", out[3].ContentID, out[3].Score, out[2].Score)
	}
	for _, c := range out[:3] {
		if c.Metadata.Method != MethodPopularity || c.Reason != ReasonPopular {
			t.Errorf("%s: method %s reason %q", c.ContentID, c.Metadata.Method, c.Reason)
		}
	}
}

func TestFallback_KeepsEveryEligibleItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		profiles []ContentFeatureProfile
		want     []string
	}{
		{
			name: "least engaged still returned",
			profiles: []ContentFeatureProfile{
				{ContentID: "popular", Stats: ContentStats{Views: 10, Likes: 2}},
				{ContentID: "also-viewed", Stats: ContentStats{Views: 5, Likes: 1}},
			},
			want: []string{"popular", "also-viewed"},
		},
		{
			name: "unscored tail newest first",
			profiles: []ContentFeatureProfile{
				{ContentID: "top", Stats: ContentStats{Views: 50, Likes: 5}},
				{ContentID: "low-old", Stats: ContentStats{Views: 1, PublishedAt: fallbackNow.AddDate(0, 0, -20)}},
				{ContentID: "low-new", Stats: ContentStats{Views: 1, PublishedAt: fallbackNow.AddDate(0, 0, -1)}},
			},
			want: []string{"top", "low-new", "low-old"},
		},
		{
			name: "single item",
			profiles: []ContentFeatureProfile{
				{ContentID: "only", Stats: ContentStats{Views: 3}},
			},
			want: []string{"only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := newTestFallback(tt.profiles...).Recommend(context.Background(), nil, "", 20)
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if len(out) != len(tt.want) {
				t.Fatalf("got %d items %v, want %v", len(out), out, tt.want)
			}
			for i, id := range tt.want {
				if out[i].ContentID != id {
					t.Errorf("out[%d] = %s, want %s", i, out[i].ContentID, id)
				}
				if out[i].Score <= 0 || out[i].Score > 1 {
					t.Errorf("%s: score %v outside (0, 1]", id, out[i].Score)
				}
				if i > 0 && out[i].Score >= out[i-1].Score {
					t.Errorf("%s: score %v not below %v", id, out[i].Score, out[i-1].Score)
				}
			}
		})
	}
}

func TestFallback_ExcludeCategoryLimit(t *testing.T) {
	t.Parallel()

	f := newTestFallback(
		ContentFeatureProfile{ContentID: "a", Category: "music", Stats: ContentStats{Views: 300}},
		ContentFeatureProfile{ContentID: "b", Category: "music", Stats: ContentStats{Views: 200}},
		ContentFeatureProfile{ContentID: "c", Category: "music", Stats: ContentStats{Views: 100}},
		ContentFeatureProfile{ContentID: "d", Category: "music", Stats: ContentStats{Views: 50}},
		ContentFeatureProfile{ContentID: "v", Category: "video", Stats: ContentStats{Views: 900}},
	)

	out, err := f.Recommend(context.Background(), mapset.NewThreadUnsafeSet("a"), "music", 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(out) != 2 || out[0].ContentID != "b" || out[1].ContentID != "c" {
		t.Errorf("got %v, want [b c]", out)
	}
}

func TestFallback_NewestFirstWithoutEngagement(t *testing.T) {
	t.Parallel()

	f := newTestFallback(
		ContentFeatureProfile{ContentID: "old", Stats: ContentStats{PublishedAt: fallbackNow.AddDate(0, 0, -10)}},
		ContentFeatureProfile{ContentID: "new", Stats: ContentStats{PublishedAt: fallbackNow}},
	)

	out, err := f.Recommend(context.Background(), nil, "", 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(out) != 2 || out[0].ContentID != "new" || out[0].Score != 1 || out[1].Score != 0.5 {
		t.Errorf("got %+v, want new/1 then old/0.5", out)
	}
	if out[0].Reason != ReasonFeatured {
		t.Errorf("reason = %q, want %q", out[0].Reason, ReasonFeatured)
	}
}

func TestFallback_EmptyAndError(t *testing.T) {
	t.Parallel()

	out, err := newTestFallback().Recommend(context.Background(), nil, "", 10)
	if err != nil || len(out) != 0 {
		t.Errorf("empty catalog = %v, %v", out, err)
	}

	boom := errors.New("db down")
	f := NewFallback(&staticContent{err: boom}, DefaultWeights().Fallback, time.Hour)
	if _, err := f.Recommend(context.Background(), nil, "", 10); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
