// Package cache provides the lazy-expiry TTL store backing the data
// providers. One store is owned by exactly one provider instance and lives
// for the lifetime of the execution environment, so entries survive warm
// invocations but are never shared across environments.
package cache

import "time"

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Store maps normalized keys to timestamped values. Staleness is checked
// only at read time; entries are never proactively evicted. There is no
// internal locking: each execution environment handles one invocation at a
// time, and callers reusing a Store concurrently must synchronize externally.
type Store[V any] struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
}

func New[V any](ttl time.Duration) *Store[V] {
	return NewWithClock[V](ttl, time.Now)
}

// NewWithClock injects the clock, for tests.
func NewWithClock[V any](ttl time.Duration, now func() time.Time) *Store[V] {
	return &Store[V]{ttl: ttl, now: now, entries: make(map[string]entry[V])}
}

// Get returns the cached value if it was stored less than ttl ago.
func (s *Store[V]) Get(key string) (V, bool) {
	e, ok := s.entries[key]
	if !ok || s.now().Sub(e.storedAt) >= s.ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores a value with a fresh timestamp, overwriting any prior entry.
func (s *Store[V]) Put(key string, value V) {
	s.entries[key] = entry[V]{value: value, storedAt: s.now()}
}

// Clear drops every entry.
func (s *Store[V]) Clear() {
	s.entries = make(map[string]entry[V])
}

// Len reports the number of entries, stale ones included.
func (s *Store[V]) Len() int {
	return len(s.entries)
}
