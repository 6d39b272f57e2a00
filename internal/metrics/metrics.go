// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Recommendation pipeline stages and sources
// - Cache efficiency per tier
// - Gateway calls and circuit breakers
// - Training runs and tracked interactions

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Recommendation Pipeline Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by source",
		},
		[]string{"operation", "source"}, // source: cache, computed, fallback, error
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end duration of recommendation requests",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.5, 1, 2.5},
		},
		[]string{"operation", "source"},
	)

	RecommendStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"stage"},
	)

	RecommendStageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_stage_errors_total",
			Help: "Pipeline stage failures by kind",
		},
		[]string{"stage", "kind"},
	)

	RecommendFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Fallback invocations by trigger",
		},
		[]string{"trigger"},
	)

	RecommendCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates",
			Help:    "Candidate list size produced per engine",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200, 500},
		},
		[]string{"method"},
	)

	ABAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_ab_assignments_total",
			Help: "A/B bucket assignments served",
		},
		[]string{"experiment", "bucket"},
	)

	TrackedInteractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_tracked_interactions_total",
			Help: "Interactions tracked through the API by type and A/B bucket",
		},
		[]string{"experiment", "bucket", "type"},
	)

	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_training_runs_total",
			Help: "Training runs by outcome",
		},
		[]string{"outcome"},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_training_duration_seconds",
			Help:    "Duration of training runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommend_snapshot_version",
			Help: "Version of the similarity snapshot currently served",
		},
	)

	// Cache Metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations by tier and result",
		},
		[]string{"tier", "operation", "result"}, // result: hit, miss, ok, error
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of entries in a cache tier",
		},
		[]string{"tier"},
	)

	// Gateway Metrics
	GatewayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Duration of interaction and content gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"gateway", "operation"},
	)

	GatewayErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_call_errors_total",
			Help: "Failed gateway calls",
		},
		[]string{"gateway", "operation"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published to the bus by topic and result",
		},
		[]string{"topic", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Events consumed from the bus by topic and result",
		},
		[]string{"topic", "result"},
	)

	// Security Metrics
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Rejected authentication attempts by mode and reason",
		},
		[]string{"mode", "reason"},
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Authorization decisions by object, action and result",
		},
		[]string{"object", "action", "result"}, // result: allow, deny
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one orchestrator call.
func RecordRecommendation(operation, source string, duration time.Duration) {
	RecommendRequests.WithLabelValues(operation, source).Inc()
	RecommendDuration.WithLabelValues(operation, source).Observe(duration.Seconds())
}

// RecordStage records the duration of a pipeline stage and, when kind is
// non-empty, a failure of that kind.
func RecordStage(stage string, duration time.Duration, kind string) {
	RecommendStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if kind != "" {
		RecommendStageErrors.WithLabelValues(stage, kind).Inc()
	}
}

// RecordCacheResult records a cache operation outcome for a tier.
func RecordCacheResult(tier, operation, result string) {
	CacheOperations.WithLabelValues(tier, operation, result).Inc()
}

// RecordGatewayCall records a gateway call.
func RecordGatewayCall(gateway, operation string, duration time.Duration, err error) {
	GatewayDuration.WithLabelValues(gateway, operation).Observe(duration.Seconds())
	if err != nil {
		GatewayErrors.WithLabelValues(gateway, operation).Inc()
	}
}

// RecordTraining records a finished training run.
func RecordTraining(duration time.Duration, version int64, err error) {
	TrainingDuration.Observe(duration.Seconds())
	if err != nil {
		TrainingRuns.WithLabelValues("failure").Inc()
		return
	}
	TrainingRuns.WithLabelValues("success").Inc()
	SnapshotVersion.Set(float64(version))
}

// RecordPublish records an event publish attempt.
func RecordPublish(topic string, err error) {
	EventsPublished.WithLabelValues(topic, resultLabel(err)).Inc()
}

// RecordConsume records an event handled by a consumer.
func RecordConsume(topic string, err error) {
	EventsConsumed.WithLabelValues(topic, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordAuthFailure records a rejected authentication attempt.
func RecordAuthFailure(mode, reason string) {
	AuthFailures.WithLabelValues(mode, reason).Inc()
}

// RecordAuthzDecision records an authorization decision.
func RecordAuthzDecision(object, action string, allowed bool) {
	result := "deny"
	if allowed {
		result = "allow"
	}
	AuthzDecisions.WithLabelValues(object, action, result).Inc()
}
