// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"sync"
	"testing"
	"time"
)

func TestMonitor_Report(t *testing.T) {
	t.Parallel()

	m := NewMonitor(1000, 200*time.Millisecond)
	for i := range 100 {
		src := SourceComputed
		if i < 80 {
			src = SourceCache
		}
		m.Record(Sample{Duration: time.Duration(i+1) * time.Millisecond, Source: src, OK: true})
	}

	r := m.Report()
	if r.Requests != 100 {
		t.Errorf("Requests = %d, want 100", r.Requests)
	}
	if r.CacheHitRate != 80 {
		t.Errorf("CacheHitRate = %v, want 80", r.CacheHitRate)
	}
	if r.FallbackRate != 0 || r.ErrorRate != 0 || r.SlowRate != 0 {
		t.Errorf("unexpected rates: %+v", r)
	}
	if r.P50Ms != 50 || r.P95Ms != 95 || r.P99Ms != 99 {
		t.Errorf("percentiles = %v/%v/%v, want 50/95/99", r.P50Ms, r.P95Ms, r.P99Ms)
	}
	if r.AverageMs != 50.5 {
		t.Errorf("AverageMs = %v, want 50.5", r.AverageMs)
	}
	if r.Status != StatusHealthy {
		t.Errorf("Status = %s, want healthy", r.Status)
	}
}

func TestMonitor_Degraded(t *testing.T) {
	t.Parallel()

	m := NewMonitor(10, 100*time.Millisecond)
	for range 10 {
		m.Record(Sample{Duration: 150 * time.Millisecond, Source: SourceFallback})
	}
	r := m.Report()
	if r.Status != StatusDegraded {
		t.Errorf("Status = %s, want degraded", r.Status)
	}
	if r.SlowRate != 100 || r.FallbackRate != 100 || r.ErrorRate != 100 {
		t.Errorf("rates = %+v, want 100%% slow, fallback and error", r)
	}
}

func TestMonitor_RingOverwritesOldest(t *testing.T) {
	t.Parallel()

	m := NewMonitor(3, time.Second)
	for i := range 5 {
		m.Record(Sample{Duration: time.Duration(i+1) * time.Millisecond, OK: true})
	}
	r := m.Report()
	if r.Requests != 3 {
		t.Fatalf("Requests = %d, want 3", r.Requests)
	}
	// Samples 3, 4 and 5 remain.
	if r.AverageMs != 4 {
		t.Errorf("AverageMs = %v, want 4", r.AverageMs)
	}

	m.Reset()
	if r := m.Report(); r.Requests != 0 || r.Status != StatusHealthy {
		t.Errorf("after Reset: %+v", r)
	}
}

func TestMonitor_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewMonitor(50, time.Second)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				m.Record(Sample{Duration: time.Millisecond, OK: true})
				_ = m.Report()
			}
		}()
	}
	wg.Wait()
	if r := m.Report(); r.Requests != 50 {
		t.Errorf("Requests = %d, want 50", r.Requests)
	}
}
