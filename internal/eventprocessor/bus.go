// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/resilience"
)

// Backends.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
	BackendEmbedded  = "embedded"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Publisher publishes tracked interactions.
type Publisher interface {
	PublishInteraction(ctx context.Context, ev *InteractionTracked) error
}

// Bus owns a Watermill publisher and subscriber pair for one topic.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *resilience.Breaker
	topic      string
	backend    string
	logger     watermill.LoggerAdapter
	embedded   *EmbeddedServer

	mu     sync.RWMutex
	closed bool
}

var _ Publisher = (*Bus)(nil)

// NewBus connects the configured backend.
func NewBus(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}

	var (
		pub      message.Publisher
		sub      message.Subscriber
		embedded *EmbeddedServer
		err      error
	)
	switch cfg.Backend {
	case BackendGoChannel:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
		pub, sub = ch, ch
	case BackendNATS:
		pub, sub, err = newNATSPubSub(cfg.NATSURL, cfg, logger)
		if err != nil {
			return nil, err
		}
	case BackendEmbedded:
		embedded, err = NewEmbeddedServer(cfg.EmbeddedStoreDir)
		if err != nil {
			return nil, err
		}
		logger.Info("Embedded NATS server started", watermill.LogFields{"url": embedded.ClientURL()})
		pub, sub, err = newNATSPubSub(embedded.ClientURL(), cfg, logger)
		if err != nil {
			embedded.Shutdown()
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}

	return &Bus{
		publisher:  pub,
		subscriber: sub,
		breaker:    resilience.NewBreaker("events_publisher", publisherBreakerConfig()),
		topic:      cfg.Topic,
		backend:    cfg.Backend,
		logger:     logger,
		embedded:   embedded,
	}, nil
}

func publisherBreakerConfig() resilience.BreakerConfig {
	cfg := resilience.DefaultBreakerConfig()
	cfg.MinRequests = 5
	cfg.Timeout = 15 * time.Second
	return cfg
}

// Topic returns the topic events are published to.
func (b *Bus) Topic() string { return b.topic }

// Backend returns the configured backend name.
func (b *Bus) Backend() string { return b.backend }

// PublishInteraction publishes ev through the circuit breaker.
func (b *Bus) PublishInteraction(ctx context.Context, ev *InteractionTracked) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := NewMessage(ev)
	if err != nil {
		metrics.RecordPublish(b.topic, err)
		return err
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}

	_, err = resilience.Execute(b.breaker, func() (struct{}, error) {
		return struct{}{}, b.publisher.Publish(b.topic, msg)
	})
	metrics.RecordPublish(b.topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.EventID, err)
	}
	return nil
}

// Subscribe returns the message channel of the bus topic. The channel is
// closed when ctx ends or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, b.topic)
}

// Healthy reports whether the transport is usable. It is false after
// Close and when the embedded server has stopped.
func (b *Bus) Healthy() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}
	return b.embedded == nil || b.embedded.Running()
}

// Close shuts down the publisher, the subscriber and the embedded server.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	err := b.publisher.Close()
	// gochannel uses one value for both sides.
	if any(b.subscriber) != any(b.publisher) {
		err = errors.Join(err, b.subscriber.Close())
	}
	if b.embedded != nil {
		b.embedded.Shutdown()
	}
	return err
}
