// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"fmt"
	"testing"
)

func TestAssignBucket_Stable(t *testing.T) {
	t.Parallel()

	for i := range 200 {
		user := fmt.Sprintf("user-%d", i)
		first := AssignBucket(user)
		for range 3 {
			if got := AssignBucket(user); got != first {
				t.Fatalf("%s: bucket changed from %s to %s", user, first, got)
			}
		}

		slot := Slot(user)
		if slot < 0 || slot >= 100 {
			t.Fatalf("%s: slot %d out of range", user, slot)
		}
		var want Bucket
		switch {
		case slot < 33:
			want = BucketControl
		case slot < 66:
			want = BucketHybrid
		default:
			want = BucketAdvanced
		}
		if first != want {
			t.Errorf("%s: slot %d assigned %s, want %s", user, slot, first, want)
		}
	}
}

func TestAssignBucket_Distribution(t *testing.T) {
	t.Parallel()

	counts := make(map[Bucket]int)
	const n = 3000
	for i := range n {
		counts[AssignBucket(fmt.Sprintf("u%d", i))]++
	}
	for _, b := range Buckets {
		if share := float64(counts[b]) / n; share < 0.25 || share > 0.42 {
			t.Errorf("bucket %s holds %.2f of users", b, share)
		}
	}
}

func TestBucket_Pipeline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bucket    Bucket
		methods   int
		rank      bool
		diversify bool
	}{
		{BucketControl, 1, false, false},
		{BucketHybrid, 3, false, false},
		{BucketAdvanced, 3, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			t.Parallel()
			p := tt.bucket.Pipeline()
			if len(p.Methods) != tt.methods || p.Rank != tt.rank || p.Diversify != tt.diversify {
				t.Errorf("Pipeline() = %+v", p)
			}
		})
	}

	if BucketControl.Pipeline().Methods[0] != MethodUserBased {
		t.Error("control bucket must serve user-based only")
	}
	if BucketHybrid.Pipeline().name() == BucketAdvanced.Pipeline().name() {
		t.Error("hybrid and advanced pipelines share a cache key")
	}
}

func TestAssigner_Assign(t *testing.T) {
	t.Parallel()

	a := NewAssigner("exp-1")
	got := a.Assign("alice")
	if got.ExperimentID != "exp-1" || got.UserID != "alice" || got.Bucket != AssignBucket("alice") || got.Slot != Slot("alice") {
		t.Errorf("Assign = %+v", got)
	}
}
