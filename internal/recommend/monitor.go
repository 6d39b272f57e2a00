// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Sample is one observed orchestrator call.
type Sample struct {
	Timestamp time.Time
	Duration  time.Duration
	Source    Source
	OK        bool
}

// Health status values.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// PerformanceReport aggregates the samples currently in the ring.
// Rates are percentages.
type PerformanceReport struct {
	Requests     int     `json:"totalRequests"`
	AverageMs    float64 `json:"averageResponseTime"`
	P50Ms        float64 `json:"p50ResponseTime"`
	P95Ms        float64 `json:"p95ResponseTime"`
	P99Ms        float64 `json:"p99ResponseTime"`
	CacheHitRate float64 `json:"cacheHitRate"`
	FallbackRate float64 `json:"fallbackRate"`
	SlowRate     float64 `json:"slowRequestRate"`
	ErrorRate    float64 `json:"errorRate"`
	ThresholdMs  float64 `json:"thresholdMs"`
	Status       string  `json:"status"`
}

// Monitor keeps the last N samples in a ring buffer. It only observes.
type Monitor struct {
	mu        sync.Mutex
	samples   []Sample
	next      int
	full      bool
	threshold time.Duration
}

// NewMonitor creates a monitor holding capacity samples.
func NewMonitor(capacity int, slowThreshold time.Duration) *Monitor {
	if capacity < 1 {
		capacity = 1
	}
	return &Monitor{
		samples:   make([]Sample, capacity),
		threshold: slowThreshold,
	}
}

// Record appends a sample, overwriting the oldest once full.
func (m *Monitor) Record(s Sample) {
	m.mu.Lock()
	m.samples[m.next] = s
	m.next++
	if m.next == len(m.samples) {
		m.next = 0
		m.full = true
	}
	m.mu.Unlock()
}

// Reset drops every sample.
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.next = 0
	m.full = false
	m.mu.Unlock()
}

func (m *Monitor) snapshot() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.next
	if m.full {
		n = len(m.samples)
	}
	out := make([]Sample, n)
	copy(out, m.samples[:n])
	return out
}

// Report computes aggregate metrics. An empty monitor is healthy.
func (m *Monitor) Report() PerformanceReport {
	samples := m.snapshot()
	r := PerformanceReport{
		Requests:    len(samples),
		ThresholdMs: toMillis(m.threshold),
		Status:      StatusHealthy,
	}
	if len(samples) == 0 {
		return r
	}

	durations := make([]float64, len(samples))
	var total float64
	var hits, fallbacks, slow, failed int
	for i, s := range samples {
		ms := toMillis(s.Duration)
		durations[i] = ms
		total += ms
		switch s.Source {
		case SourceCache:
			hits++
		case SourceFallback:
			fallbacks++
		}
		if s.Duration > m.threshold {
			slow++
		}
		if !s.OK {
			failed++
		}
	}
	sort.Float64s(durations)

	n := float64(len(samples))
	r.AverageMs = round2(total / n)
	r.P50Ms = percentile(durations, 50)
	r.P95Ms = percentile(durations, 95)
	r.P99Ms = percentile(durations, 99)
	r.CacheHitRate = round2(float64(hits) / n * 100)
	r.FallbackRate = round2(float64(fallbacks) / n * 100)
	r.SlowRate = round2(float64(slow) / n * 100)
	r.ErrorRate = round2(float64(failed) / n * 100)

	if r.P95Ms >= r.ThresholdMs {
		r.Status = StatusDegraded
	}
	return r
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
