// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package models

import (
	"time"

	"github.com/tomtom215/curator/internal/recommend"
)

// RecommendationsData is the data of every recommendation list endpoint.
type RecommendationsData struct {
	Recommendations []recommend.Candidate  `json:"recommendations"`
	Count           int                    `json:"count"`
	Source          recommend.Source       `json:"source"`
	Options         any                    `json:"options"`
	UserProfile     *recommend.UserSummary `json:"userProfile,omitempty"`
	TestGroup       recommend.Bucket       `json:"testGroup,omitempty"`
	ExperimentID    string                 `json:"experimentId,omitempty"`
}

// NewRecommendationsData wraps an orchestrator result.
func NewRecommendationsData(res *recommend.Result, options any) *RecommendationsData {
	cs := res.Candidates
	if cs == nil {
		cs = []recommend.Candidate{}
	}
	return &RecommendationsData{
		Recommendations: cs,
		Count:           len(cs),
		Source:          res.Source,
		Options:         options,
		UserProfile:     res.UserProfile,
		TestGroup:       res.Bucket,
	}
}

// SimilarContentData is the data of the similar-content endpoints.
type SimilarContentData struct {
	ContentID       string                `json:"contentId"`
	Recommendations []recommend.Candidate `json:"recommendations"`
	Count           int                   `json:"count"`
	Source          recommend.Source      `json:"source"`
	Options         LimitOptions          `json:"options"`
}

// SimilarUsersData is the data of the similar-users endpoint.
type SimilarUsersData struct {
	UserID  string                      `json:"userId"`
	Users   []recommend.SimilarityScore `json:"users"`
	Count   int                         `json:"count"`
	Source  recommend.Source            `json:"source"`
	Options LimitOptions                `json:"options"`
}

// LimitOptions echoes a limit-only query.
type LimitOptions struct {
	Limit int `json:"limit"`
}

// TrackInteractionRequest is the body of POST /recommendations/track-interaction.
type TrackInteractionRequest struct {
	ContentID       string `json:"contentId" validate:"required,identifier"`
	InteractionType string `json:"interactionType" validate:"required,max=32"`
	ExperimentID    string `json:"experimentId" validate:"omitempty,max=64"`
}

// TrackInteractionData acknowledges a tracked interaction.
type TrackInteractionData struct {
	EventID         string              `json:"eventId"`
	ContentID       string              `json:"contentId"`
	InteractionType recommend.EventType `json:"interactionType"`
	ExperimentID    string              `json:"experimentId"`
	TestGroup       recommend.Bucket    `json:"testGroup"`
	TrackedAt       time.Time           `json:"trackedAt"`
}

// EvaluateRequest is the body of POST /recommendations/evaluate.
type EvaluateRequest struct {
	TestSetSize int `json:"testSetSize" validate:"min=1,max=10000"`
}

// TrainData acknowledges a training request.
type TrainData struct {
	Message string                   `json:"message"`
	Status  recommend.TrainingStatus `json:"status"`
}

// CacheClearData reports a cache flush.
type CacheClearData struct {
	// Scope is "user" or "all".
	Scope   string `json:"scope"`
	UserID  string `json:"userId,omitempty"`
	Removed int    `json:"removed,omitempty"`
}

// HealthData is the body of GET /health.
type HealthData struct {
	Status          string                   `json:"status"`
	Version         string                   `json:"version"`
	Uptime          string                   `json:"uptime"`
	Training        recommend.TrainingStatus `json:"training"`
	PipelineHealthy bool                     `json:"pipelineHealthy"`
	EventsHealthy   *bool                    `json:"eventsHealthy,omitempty"`
}
