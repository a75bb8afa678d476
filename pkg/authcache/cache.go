// Package authcache implements the bounded TTL cache with per-identifier
// rate limiting described in spec §4.3: an in-memory LRU (Cache, grounded
// on the teacher's container/list embeddings cache) and a Redis-backed
// alternative (RedisCache) for multi-process deployments.
package authcache

import (
	"container/list"
	"sync"
	"time"

	"github.com/ocppauth/core/pkg/authmodel"
)

// Stats reports the cache's operational counters (spec §4.3).
type Stats struct {
	Size            int
	Hits            int64
	Misses          int64
	Evictions       int64
	Throttled       int64
	LastEvictionAt  *time.Time
}

// Store is the contract both the in-memory and Redis-backed
// implementations satisfy, letting the rest of the core stay
// backend-agnostic.
type Store interface {
	Get(key string) (authmodel.AuthorizationResult, bool)
	Set(key string, result authmodel.AuthorizationResult, ttlOverride *int) bool
	Remove(key string)
	Clear()
	Stats() Stats
}

type entry struct {
	key      string
	result   authmodel.AuthorizationResult
	storedAt time.Time
	ttl      time.Duration
	hits     int64
}

type rateWindow struct {
	windowStart time.Time
	count       int
}

// Cache is a bounded, in-memory, LRU-evicted TTL cache from identifier
// value to authorization result, with a per-identifier write rate limit.
type Cache struct {
	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List

	maxEntries int
	defaultTTL time.Duration
	now        func() time.Time

	maxWritesPerWindow int
	window             time.Duration
	writeWindows       map[string]*rateWindow

	hits, misses, evictions, throttled int64
	lastEvictionAt                     *time.Time
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithClock overrides the cache's time source; intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithRateLimit overrides the default rate limit of 10 writes/minute per
// identifier (spec §4.3).
func WithRateLimit(maxWrites int, window time.Duration) Option {
	return func(c *Cache) {
		c.maxWritesPerWindow = maxWrites
		c.window = window
	}
}

// New builds a Cache bounded to maxEntries with the given default TTL for
// Set calls that don't specify a ttlOverride.
func New(maxEntries int, defaultTTL time.Duration, opts ...Option) *Cache {
	c := &Cache{
		items:              make(map[string]*list.Element),
		order:              list.New(),
		maxEntries:         maxEntries,
		defaultTTL:         defaultTTL,
		now:                time.Now,
		maxWritesPerWindow: 10,
		window:             time.Minute,
		writeWindows:       make(map[string]*rateWindow),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached result for key if it exists and has not expired.
// An expired entry is removed as a side effect of the read (spec §4.3).
func (c *Cache) Get(key string) (authmodel.AuthorizationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return authmodel.AuthorizationResult{}, false
	}
	e := elem.Value.(*entry)
	if c.now().After(e.storedAt.Add(e.ttl)) {
		c.removeLocked(key)
		c.misses++
		return authmodel.AuthorizationResult{}, false
	}

	c.order.MoveToFront(elem)
	e.hits++
	c.hits++
	return e.result, true
}

// Set inserts or replaces the cached result for key. ttlOverride, if
// non-nil, is used instead of the cache's default TTL. Writes are subject
// to the per-identifier rate limit; a throttled write is dropped silently
// per spec §4.3/§9(c), with the drop counted in Stats().Throttled.
// Returns false when the write was throttled.
func (c *Cache) Set(key string, result authmodel.AuthorizationResult, ttlOverride *int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.allowWriteLocked(key) {
		c.throttled++
		return false
	}

	ttl := c.defaultTTL
	if ttlOverride != nil {
		ttl = time.Duration(*ttlOverride) * time.Second
	}

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry)
		e.result = result
		e.storedAt = c.now()
		e.ttl = ttl
		c.order.MoveToFront(elem)
		return true
	}

	e := &entry{key: key, result: result, storedAt: c.now(), ttl: ttl}
	elem := c.order.PushFront(e)
	c.items[key] = elem

	if c.order.Len() > c.maxEntries {
		c.evictLRULocked()
	}
	return true
}

// allowWriteLocked enforces the per-identifier write rate limit. Caller
// must hold c.mu.
func (c *Cache) allowWriteLocked(key string) bool {
	w, ok := c.writeWindows[key]
	now := c.now()
	if !ok || now.Sub(w.windowStart) >= c.window {
		c.writeWindows[key] = &rateWindow{windowStart: now, count: 1}
		return true
	}
	if w.count >= c.maxWritesPerWindow {
		return false
	}
	w.count++
	return true
}

// evictLRULocked evicts the least-recently-used entry. Caller must hold
// c.mu; the eviction and the size check that triggers it happen under the
// same lock so size never transiently exceeds maxEntries (spec §5
// Transactional discipline).
func (c *Cache) evictLRULocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry)
	c.removeLocked(e.key)
	c.evictions++
	now := c.now()
	c.lastEvictionAt = &now
}

// removeLocked deletes key without touching counters beyond what the
// caller has already accounted for. Caller must hold c.mu.
func (c *Cache) removeLocked(key string) {
	if elem, ok := c.items[key]; ok {
		c.order.Remove(elem)
		delete(c.items, key)
	}
}

// Remove evicts key explicitly (cache invalidation). Idempotent: removing
// an absent key is a no-op (spec §8 invariant 7).
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

// Clear empties the cache and resets hit/miss/eviction/throttle counters
// (spec §4.3 invariant iii).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order = list.New()
	c.writeWindows = make(map[string]*rateWindow)
	c.hits, c.misses, c.evictions, c.throttled = 0, 0, 0, 0
	c.lastEvictionAt = nil
}

// Stats reports the cache's operational counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:           c.order.Len(),
		Hits:           c.hits,
		Misses:         c.misses,
		Evictions:      c.evictions,
		Throttled:      c.throttled,
		LastEvictionAt: c.lastEvictionAt,
	}
}
