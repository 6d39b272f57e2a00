// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Message metadata keys.
const (
	MetadataUserID        = "user_id"
	MetadataType          = "interaction_type"
	MetadataCorrelationID = "correlation_id"
)

// Marshal validates and encodes an event.
func Marshal(ev *InteractionTracked) ([]byte, error) {
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates an event.
func Unmarshal(data []byte) (*InteractionTracked, error) {
	var ev InteractionTracked
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	return &ev, nil
}

// NewMessage wraps ev in a Watermill message keyed by its event ID.
func NewMessage(ev *InteractionTracked) (*message.Message, error) {
	data, err := Marshal(ev)
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set(MetadataUserID, ev.UserID)
	msg.Metadata.Set(MetadataType, string(ev.Type))
	return msg, nil
}
