// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

type fakeSubscriber struct {
	ch  chan *message.Message
	err error
}

func (f *fakeSubscriber) Subscribe(context.Context) (<-chan *message.Message, error) {
	return f.ch, f.err
}

func (f *fakeSubscriber) Topic() string { return "test.interactions" }

type fakeInvalidator struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (f *fakeInvalidator) InvalidateUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	return 2, f.err
}

func (f *fakeInvalidator) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.users...)
}

func waitAcked(t *testing.T, msg *message.Message) {
	t.Helper()
	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatal("message nacked")
	case <-time.After(5 * time.Second):
		t.Fatal("message not acked")
	}
}

func runConsumer(t *testing.T, c *Consumer) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(t.Context())
	errs := make(chan error, 1)
	go func() { errs <- c.Serve(ctx) }()
	return cancelFn, errs
}

func TestConsumerInvalidatesUser(t *testing.T) {
	t.Parallel()

	sub := &fakeSubscriber{ch: make(chan *message.Message, 4)}
	inv := &fakeInvalidator{}
	c := NewConsumer(sub, inv)
	cancel, done := runConsumer(t, c)

	msg, err := NewMessage(testEvent())
	if err != nil {
		t.Fatal(err)
	}
	msg.Metadata.Set(MetadataCorrelationID, "feedbeef")
	sub.ch <- msg
	waitAcked(t, msg)

	if got := inv.calls(); len(got) != 1 || got[0] != "u-1" {
		t.Errorf("invalidated = %v, want [u-1]", got)
	}
	if handled, failed := c.Stats(); handled != 1 || failed != 0 {
		t.Errorf("Stats() = %d, %d", handled, failed)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

func TestConsumerAcksBadMessages(t *testing.T) {
	t.Parallel()

	sub := &fakeSubscriber{ch: make(chan *message.Message, 4)}
	inv := &fakeInvalidator{err: errors.New("redis down")}
	c := NewConsumer(sub, inv)
	cancel, _ := runConsumer(t, c)
	defer cancel()

	garbage := message.NewMessage("m-1", []byte("{"))
	sub.ch <- garbage
	waitAcked(t, garbage)

	valid, err := NewMessage(testEvent())
	if err != nil {
		t.Fatal(err)
	}
	sub.ch <- valid
	waitAcked(t, valid)

	if handled, failed := c.Stats(); handled != 0 || failed != 2 {
		t.Errorf("Stats() = %d, %d, want 0, 2", handled, failed)
	}
	if got := inv.calls(); len(got) != 1 {
		t.Errorf("invalidator calls = %v, want one", got)
	}
}

func TestConsumerSubscriptionClosed(t *testing.T) {
	t.Parallel()

	sub := &fakeSubscriber{ch: make(chan *message.Message)}
	close(sub.ch)
	err := NewConsumer(sub, &fakeInvalidator{}).Serve(t.Context())
	if err == nil {
		t.Error("Serve() on closed subscription error = nil")
	}

	failing := &fakeSubscriber{err: errors.New("no route")}
	if err := NewConsumer(failing, &fakeInvalidator{}).Serve(t.Context()); err == nil {
		t.Error("Serve() with failing subscribe error = nil")
	}
}
