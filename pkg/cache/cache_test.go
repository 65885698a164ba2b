package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestGetWithinTTL(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)}
	s := NewWithClock[string](30*time.Minute, c.now)

	s.Put("AAPL", "cached")
	c.advance(29 * time.Minute)

	v, ok := s.Get("AAPL")
	assert.True(t, ok)
	assert.Equal(t, "cached", v)
}

func TestGetAfterTTLExpires(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)}
	s := NewWithClock[string](30*time.Minute, c.now)

	s.Put("AAPL", "cached")
	c.advance(30 * time.Minute)

	_, ok := s.Get("AAPL")
	assert.False(t, ok)
	// Lazy expiry: the stale entry is still held until overwritten.
	assert.Equal(t, 1, s.Len())
}

func TestGetUnknownKey(t *testing.T) {
	s := New[int](time.Minute)
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestPutRefreshesTimestamp(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC)}
	s := NewWithClock[string](30*time.Minute, c.now)

	s.Put("AAPL", "old")
	c.advance(20 * time.Minute)
	s.Put("AAPL", "new")
	c.advance(20 * time.Minute)

	v, ok := s.Get("AAPL")
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestClear(t *testing.T) {
	s := New[string](time.Minute)
	s.Put("a", "1")
	s.Put("b", "2")

	s.Clear()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)
}
