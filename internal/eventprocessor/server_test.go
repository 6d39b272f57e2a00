// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/logging"
)

func TestEmbeddedServer(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a NATS server")
	}

	srv, err := NewEmbeddedServer(t.TempDir())
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error = %v", err)
	}
	if !strings.HasPrefix(srv.ClientURL(), "nats://127.0.0.1:") {
		t.Errorf("ClientURL() = %q", srv.ClientURL())
	}
	if !srv.Running() {
		t.Error("Running() = false after start")
	}
	srv.Shutdown()
	if srv.Running() {
		t.Error("Running() = true after Shutdown")
	}
}

func TestBusEmbeddedRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a NATS server")
	}

	bus, err := NewBus(&config.EventsConfig{
		Backend:          BackendEmbedded,
		Topic:            "recommend.interactions",
		StreamName:       "RECOMMEND_INTERACTIONS",
		MaxAge:           time.Hour,
		ConsumerGroup:    "curator-test",
		EmbeddedStoreDir: t.TempDir(),
	}, logging.NewWatermillAdapter())
	if err != nil {
		t.Fatalf("NewBus(embedded) error = %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })

	if !bus.Healthy() {
		t.Error("Healthy() = false on a fresh bus")
	}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	messages, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	ev := testEvent()
	if err := bus.PublishInteraction(t.Context(), ev); err != nil {
		t.Fatalf("PublishInteraction() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()
		got, err := Unmarshal(msg.Payload)
		if err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if got.EventID != ev.EventID || got.ContentID != ev.ContentID {
			t.Errorf("decoded = %+v, want %+v", got, ev)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("message not delivered over embedded NATS")
	}

	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if bus.Healthy() {
		t.Error("Healthy() = true after Close")
	}
}
