package prompt

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/vk/pzsh/internal/clock"
)

// RefreshFunc computes the true value of an expensive segment. It runs off
// the render path and may take arbitrarily long.
type RefreshFunc func() (string, error)

// cacheEntry is one published value. Entries are immutable; the refresh
// goroutine publishes a new one atomically rather than mutating in place.
type cacheEntry struct {
	value       string
	refreshedAt time.Time
}

// Segment is a per-segment cache with a time-to-live. Read never blocks: a
// stale read returns the last known value (or the empty placeholder before
// the first refresh completes) and schedules at most one refresh.
type Segment struct {
	clk     clock.Clock
	ttl     time.Duration
	refresh RefreshFunc
	logger  *slog.Logger

	current  atomic.Pointer[cacheEntry]
	inFlight atomic.Bool
}

// NewSegment creates a segment cache. The first Read schedules the initial
// refresh; until it completes, Read returns "".
func NewSegment(clk clock.Clock, ttl time.Duration, refresh RefreshFunc, logger *slog.Logger) *Segment {
	return &Segment{clk: clk, ttl: ttl, refresh: refresh, logger: logger}
}

// Read returns the cached value without ever waiting for the underlying
// computation. When the entry is stale and no refresh is already in flight,
// one is started on its own goroutine.
func (s *Segment) Read() string {
	entry := s.current.Load()
	if entry == nil || s.clk.Now().Sub(entry.refreshedAt) > s.ttl {
		s.scheduleRefresh()
	}
	if entry == nil {
		return ""
	}
	return entry.value
}

// scheduleRefresh starts a refresh unless one is already running. The
// CompareAndSwap guarantees at most one in-flight refresh per segment.
func (s *Segment) scheduleRefresh() {
	if !s.inFlight.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.inFlight.Store(false)

		value, err := s.refresh()
		if err != nil {
			// Non-fatal: the stale value stays authoritative until the
			// next successful refresh.
			s.logger.Debug("Segment refresh failed.", "error", err)
			return
		}
		s.current.Store(&cacheEntry{value: value, refreshedAt: s.clk.Now()})
	}()
}

// Cache holds the expensive segments keyed by identity. The map is built
// once before rendering starts and is read-only afterwards; all mutation
// happens inside the individual segments.
type Cache struct {
	segments map[string]*Segment
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{segments: make(map[string]*Segment)}
}

// Add registers a segment under its identity key. Not safe to call once
// rendering has started.
func (c *Cache) Add(key string, seg *Segment) {
	c.segments[key] = seg
}

// Read returns the segment's cached value, or "" for an unknown key.
func (c *Cache) Read(key string) string {
	seg, ok := c.segments[key]
	if !ok {
		return ""
	}
	return seg.Read()
}
