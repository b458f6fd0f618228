package platform

import (
	"sync"
	"time"

	"github.com/terminator-run/terminator/internal/element"
	"github.com/terminator-run/terminator/internal/logging"
)

// DefaultHandleTTL is the lifetime of a cached element reference before it
// must be re-resolved (spec §3: "a stable id plus a short-lived reference
// cache (LRU, 30s TTL)").
const DefaultHandleTTL = 30 * time.Second

// HandleCache is an in-memory, TTL-expiring cache from logical element id to
// its live *element.Element, adapted from the teacher's MemoryCache for a
// typed value instead of raw bytes.
type HandleCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	log *logging.Logger

	entries map[string]*handleEntry
}

type handleEntry struct {
	el        *element.Element
	expiresAt time.Time
}

// NewHandleCache creates a handle cache with the given TTL (DefaultHandleTTL
// if ttl <= 0) and starts its background eviction loop.
func NewHandleCache(ttl time.Duration, log *logging.Logger) *HandleCache {
	if ttl <= 0 {
		ttl = DefaultHandleTTL
	}
	c := &HandleCache{
		ttl:     ttl,
		log:     log,
		entries: make(map[string]*handleEntry),
	}
	go c.evictLoop()
	return c
}

// Put stores e under its own logical id, refreshing the TTL.
func (c *HandleCache) Put(e *element.Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.ID()] = &handleEntry{el: e, expiresAt: time.Now().Add(c.ttl)}
}

// Get returns the cached element for id, or (nil, false) if absent or
// expired (spec §3 invariant: an expired reference must re-resolve, never
// silently extend).
func (c *HandleCache) Get(id string) (*element.Element, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.el, true
}

// Delete drops a cached reference immediately, e.g. after it's observed to
// be stale.
func (c *HandleCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Len reports the current entry count, including not-yet-evicted expired
// entries.
func (c *HandleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *HandleCache) evictLoop() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for id, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, id)
			}
		}
		n := len(c.entries)
		c.mu.Unlock()
		if c.log != nil {
			c.log.Debug("handle cache eviction pass", "remaining", n)
		}
	}
}
