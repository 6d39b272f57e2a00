// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package memory provides in-process interaction and content gateways. They
// back tests, demos and deployments without a database, and can be seeded
// from a JSON file.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/recommend"
)

// Seed is the on-disk form of a store.
type Seed struct {
	Content      []recommend.ContentFeatureProfile `json:"content"`
	Interactions []recommend.Event                 `json:"interactions"`
}

// Store holds events and catalog profiles in memory. It implements both
// recommend.InteractionGateway and recommend.ContentGateway and is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	events  []recommend.Event
	byUser  map[string][]int
	content map[string]recommend.ContentFeatureProfile
	now     func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		byUser:  make(map[string][]int),
		content: make(map[string]recommend.ContentFeatureProfile),
		now:     time.Now,
	}
}

// FromSeed creates a store holding the seed's content and events.
func FromSeed(seed *Seed) *Store {
	s := New()
	for i := range seed.Content {
		s.PutContent(&seed.Content[i])
	}
	for _, e := range seed.Interactions {
		s.Record(e)
	}
	return s
}

// ReadSeed reads and validates a JSON seed file.
func ReadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	for i, e := range seed.Interactions {
		t, err := recommend.ParseEventType(string(e.Type))
		if err != nil {
			return nil, fmt.Errorf("seed interaction %d: %w", i, err)
		}
		seed.Interactions[i].Type = t
	}
	return &seed, nil
}

// LoadFile creates a store from a JSON seed file.
func LoadFile(path string) (*Store, error) {
	seed, err := ReadSeed(path)
	if err != nil {
		return nil, err
	}
	return FromSeed(seed), nil
}

// Record appends an event. A zero timestamp is set to now.
func (s *Store) Record(e recommend.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	s.byUser[e.UserID] = append(s.byUser[e.UserID], len(s.events))
	s.events = append(s.events, e)
}

// RecordInteraction implements recommend.InteractionRecorder.
func (s *Store) RecordInteraction(ctx context.Context, e recommend.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Record(e)
	return nil
}

// PutContent inserts or replaces a catalog profile.
func (s *Store) PutContent(p *recommend.ContentFeatureProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Fingerprint = append([]byte(nil), p.Fingerprint...)
	s.content[p.ContentID] = cp
}

// GetInteractions implements recommend.InteractionGateway.
func (s *Store) GetInteractions(ctx context.Context, userID string, window time.Duration) ([]recommend.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := s.since(window)
	idx := s.byUser[userID]
	out := make([]recommend.Event, 0, len(idx))
	for _, i := range idx {
		if e := s.events[i]; !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListInteractions implements recommend.InteractionGateway.
func (s *Store) ListInteractions(ctx context.Context, window time.Duration) ([]recommend.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	since := s.since(window)
	out := make([]recommend.Event, 0, len(s.events))
	for _, e := range s.events {
		if !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) since(window time.Duration) time.Time {
	if window <= 0 {
		return time.Time{}
	}
	return s.now().Add(-window)
}

// GetContentFeatures implements recommend.ContentGateway.
func (s *Store) GetContentFeatures(ctx context.Context, contentID string) (*recommend.ContentFeatureProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.content[contentID]
	if !ok {
		return nil, fmt.Errorf("content %q: %w", contentID, recommend.ErrContentNotFound)
	}
	return &p, nil
}

// ListCatalog implements recommend.ContentGateway. Profiles are ordered by
// content ID.
func (s *Store) ListCatalog(ctx context.Context, filter recommend.CatalogFilter) ([]recommend.ContentFeatureProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]recommend.ContentFeatureProfile, 0, len(s.content))
	for _, p := range s.content {
		if filter.Category == "" || p.Category == filter.Category {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ContentID < out[j].ContentID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

var (
	_ recommend.InteractionGateway  = (*Store)(nil)
	_ recommend.InteractionRecorder = (*Store)(nil)
	_ recommend.ContentGateway      = (*Store)(nil)
)
