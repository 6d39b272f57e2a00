// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
)

// Invalidator drops the cached lists of a user.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID string) (int, error)
}

// Subscriber yields the messages of the bus topic.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.Message, error)
	Topic() string
}

// Consumer invalidates cached recommendations when an interaction is
// tracked. It implements suture.Service.
type Consumer struct {
	sub         Subscriber
	invalidator Invalidator

	handled atomic.Int64
	failed  atomic.Int64
}

// NewConsumer creates a consumer of sub's topic.
func NewConsumer(sub Subscriber, invalidator Invalidator) *Consumer {
	return &Consumer{sub: sub, invalidator: invalidator}
}

// Serve consumes until ctx is cancelled or the subscription closes.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.sub.Topic(), err)
	}

	logging.Info().Str("topic", c.sub.Topic()).Msg("interaction consumer started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", c.sub.Topic())
			}
			c.process(msg)
		}
	}
}

// process always acks. A payload that cannot be decoded will never
// succeed, and a failed invalidation is bounded by the cache TTL.
func (c *Consumer) process(msg *message.Message) {
	ctx := msg.Context()
	if id := msg.Metadata.Get(MetadataCorrelationID); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	err := c.handle(ctx, msg)
	metrics.RecordConsume(c.sub.Topic(), err)
	if err != nil {
		c.failed.Add(1)
		logging.Ctx(ctx).Warn().Err(err).Str("message_uuid", msg.UUID).Msg("interaction event not applied")
	} else {
		c.handled.Add(1)
	}
	msg.Ack()
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) error {
	ev, err := Unmarshal(msg.Payload)
	if err != nil {
		return err
	}

	metrics.TrackedInteractions.WithLabelValues(ev.ExperimentID, string(ev.Bucket), string(ev.Type)).Inc()

	removed, err := c.invalidator.InvalidateUser(ctx, ev.UserID)
	if err != nil {
		return fmt.Errorf("invalidate user %s: %w", ev.UserID, err)
	}
	logging.Ctx(ctx).Debug().
		Str("user_id", ev.UserID).
		Str("content_id", ev.ContentID).
		Str("type", string(ev.Type)).
		Int("removed", removed).
		Msg("interaction applied")
	return nil
}

// Stats returns the number of handled and failed messages.
func (c *Consumer) Stats() (handled, failed int64) {
	return c.handled.Load(), c.failed.Load()
}

// String names the service in supervisor logs.
func (c *Consumer) String() string {
	return "interaction-consumer"
}
