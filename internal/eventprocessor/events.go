// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/curator/internal/recommend"
)

// SchemaVersion is the current InteractionTracked schema.
const SchemaVersion = 1

// InteractionTracked is published for every interaction recorded through
// the API.
type InteractionTracked struct {
	SchemaVersion int                 `json:"schema_version"`
	EventID       string              `json:"event_id"`
	UserID        string              `json:"user_id"`
	ContentID     string              `json:"content_id"`
	Type          recommend.EventType `json:"type"`
	ExperimentID  string              `json:"experiment_id,omitempty"`
	Bucket        recommend.Bucket    `json:"bucket,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// NewInteractionTracked builds an event for e with a fresh event ID.
func NewInteractionTracked(e recommend.Event, a recommend.Assignment) *InteractionTracked {
	return &InteractionTracked{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		UserID:        e.UserID,
		ContentID:     e.ContentID,
		Type:          e.Type,
		ExperimentID:  a.ExperimentID,
		Bucket:        a.Bucket,
		OccurredAt:    e.Timestamp,
	}
}

// Event returns the interaction carried by the event.
func (ev *InteractionTracked) Event() recommend.Event {
	return recommend.Event{UserID: ev.UserID, ContentID: ev.ContentID, Type: ev.Type, Timestamp: ev.OccurredAt}
}

// Validate checks the fields a consumer relies on.
func (ev *InteractionTracked) Validate() error {
	switch {
	case ev.EventID == "":
		return errors.New("event_id is required")
	case ev.UserID == "":
		return errors.New("user_id is required")
	case ev.ContentID == "":
		return errors.New("content_id is required")
	case ev.OccurredAt.IsZero():
		return errors.New("occurred_at is required")
	}
	if _, err := recommend.ParseEventType(string(ev.Type)); err != nil {
		return fmt.Errorf("type: %w", err)
	}
	if ev.SchemaVersion > SchemaVersion {
		return fmt.Errorf("unsupported schema version %d", ev.SchemaVersion)
	}
	return nil
}
