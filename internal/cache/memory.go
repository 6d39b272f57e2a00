// Curator - Hybrid Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// lruEntry is a node of the recency list.
type lruEntry struct {
	key       string
	value     []byte
	prev      *lruEntry
	next      *lruEntry
	expiresAt time.Time
}

// Memory is a thread-safe in-process LRU store with per-entry TTL.
//
// Key features:
//   - O(1) Get, Set and eviction
//   - Lazy expiration on read, bulk expiration via CleanupExpired
//   - Prefix deletion by scan (the tier is bounded by capacity)
//
// The list uses head/tail sentinels: head.next is the most recently used
// entry and tail.prev the least recently used.
type Memory struct {
	mu sync.Mutex

	capacity int
	items    map[string]*lruEntry
	head     *lruEntry
	tail     *lruEntry
	closed   bool

	// now is replaceable in tests.
	now func() time.Time

	hits   int64
	misses int64
}

// NewMemory creates an LRU store holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 10000
	}
	m := &Memory{
		capacity: capacity,
		items:    make(map[string]*lruEntry, capacity),
		head:     &lruEntry{},
		tail:     &lruEntry{},
		now:      time.Now,
	}
	m.head.next = m.tail
	m.tail.prev = m.head
	return m
}

// Get implements Store. Found entries move to the front.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, false, ErrClosed
	}

	entry, ok := m.items[key]
	if !ok {
		m.misses++
		return nil, false, nil
	}
	if !m.now().Before(entry.expiresAt) {
		m.removeEntry(entry)
		m.misses++
		return nil, false, nil
	}

	m.moveToFront(entry)
	m.hits++
	// Copy so callers cannot mutate the stored value.
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true, nil
}

// Set implements Store. The least recently used entry is evicted when the
// store is full.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	expiresAt := m.now().Add(ttl)

	if entry, ok := m.items[key]; ok {
		entry.value = stored
		entry.expiresAt = expiresAt
		m.moveToFront(entry)
		return nil
	}

	entry := &lruEntry{key: key, value: stored, expiresAt: expiresAt}
	m.addToFront(entry)
	m.items[key] = entry

	for len(m.items) > m.capacity {
		m.evictOldest()
	}
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		if entry, ok := m.items[key]; ok {
			m.removeEntry(entry)
		}
	}
	return nil
}

// DeletePrefix implements Store.
func (m *Memory) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.items {
		if strings.HasPrefix(key, prefix) {
			m.removeEntry(entry)
			removed++
		}
	}
	return removed, nil
}

// Clear implements Store.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]*lruEntry, m.capacity)
	m.head.next = m.tail
	m.tail.prev = m.head
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// CleanupExpired removes all expired entries and returns how many were removed.
func (m *Memory) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for entry := m.tail.prev; entry != m.head; {
		prev := entry.prev
		if !now.Before(entry.expiresAt) {
			m.removeEntry(entry)
			removed++
		}
		entry = prev
	}
	return removed
}

// Len returns the current number of entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Stats returns hit/miss counters and the current size.
func (m *Memory) Stats() (hits, misses int64, size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses, len(m.items)
}

// Internal methods (must be called with lock held)

func (m *Memory) addToFront(entry *lruEntry) {
	entry.prev = m.head
	entry.next = m.head.next
	m.head.next.prev = entry
	m.head.next = entry
}

func (m *Memory) moveToFront(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	m.addToFront(entry)
}

func (m *Memory) removeEntry(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(m.items, entry.key)
}

func (m *Memory) evictOldest() {
	oldest := m.tail.prev
	if oldest == m.head {
		return
	}
	m.removeEntry(oldest)
}

var _ Store = (*Memory)(nil)
