package authcache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ocppauth/core/internal/obslog"
	"github.com/ocppauth/core/pkg/authmodel"
)

// RedisCache is a Store backed by a shared Redis instance, so an
// authorize-decision cache can be shared across a fleet of gateway
// processes (SPEC_FULL.md DOMAIN STACK). It keeps the same TTL, LRU-via-
// Redis-eviction, and rate-limit contract as Cache, but size/eviction
// bookkeeping for the keyspace as a whole is delegated to Redis'
// `maxmemory-policy allkeys-lru` rather than tracked locally — the
// distributed case genuinely cannot give linearizable size==maxEntries
// across replicas without a second round trip per write, so Stats().Size
// here is advisory.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration

	maxWritesPerWindow int
	window             time.Duration

	hits, misses, evictions, throttled atomic.Int64
}

// NewRedisCache builds a RedisCache using client, namespacing all keys
// under prefix so one Redis instance can serve multiple stations.
func NewRedisCache(client *redis.Client, prefix string, defaultTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:             client,
		prefix:             prefix,
		defaultTTL:         defaultTTL,
		maxWritesPerWindow: 10,
		window:             time.Minute,
	}
}

func (r *RedisCache) key(k string) string       { return r.prefix + ":entry:" + k }
func (r *RedisCache) rateKey(k string) string    { return r.prefix + ":rate:" + k }

type redisEntry struct {
	Result authmodel.AuthorizationResult `json:"result"`
}

// Get returns the cached result for key, if present and unexpired. Redis'
// own TTL (set via SETEX in Set) is the expiry mechanism, so a miss here
// is indistinguishable between "never set" and "expired" — both are
// correctly treated as a cache miss per spec §4.3.
func (r *RedisCache) Get(key string) (authmodel.AuthorizationResult, bool) {
	ctx := context.Background()
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == redis.Nil {
		r.misses.Add(1)
		return authmodel.AuthorizationResult{}, false
	}
	if err != nil {
		obslog.Warnf("authcache: redis get failed for %q: %v", key, err)
		r.misses.Add(1)
		return authmodel.AuthorizationResult{}, false
	}

	var e redisEntry
	if jsonErr := json.Unmarshal(raw, &e); jsonErr != nil {
		obslog.Warnf("authcache: corrupt redis entry for %q: %v", key, jsonErr)
		r.misses.Add(1)
		return authmodel.AuthorizationResult{}, false
	}
	r.hits.Add(1)
	return e.Result, true
}

// Set inserts or replaces the cached result for key, subject to the same
// per-identifier rate limit as Cache.
func (r *RedisCache) Set(key string, result authmodel.AuthorizationResult, ttlOverride *int) bool {
	ctx := context.Background()

	if !r.allowWrite(ctx, key) {
		r.throttled.Add(1)
		return false
	}

	ttl := r.defaultTTL
	if ttlOverride != nil {
		ttl = time.Duration(*ttlOverride) * time.Second
	}

	payload, err := json.Marshal(redisEntry{Result: result})
	if err != nil {
		obslog.Errorf("authcache: failed to marshal entry for %q: %v", key, err)
		return false
	}
	if err := r.client.Set(ctx, r.key(key), payload, ttl).Err(); err != nil {
		obslog.Warnf("authcache: redis set failed for %q: %v", key, err)
		return false
	}
	return true
}

// allowWrite enforces the per-identifier write rate limit using a Redis
// counter with its own expiring window.
func (r *RedisCache) allowWrite(ctx context.Context, key string) bool {
	rk := r.rateKey(key)
	count, err := r.client.Incr(ctx, rk).Result()
	if err != nil {
		// Fail open on a degraded rate-limit counter: the cache write
		// itself still succeeds, matching the read path never being
		// rate-limited.
		obslog.Warnf("authcache: rate-limit counter failed for %q: %v", key, err)
		return true
	}
	if count == 1 {
		r.client.Expire(ctx, rk, r.window)
	}
	return count <= int64(r.maxWritesPerWindow)
}

// Remove evicts key explicitly.
func (r *RedisCache) Remove(key string) {
	ctx := context.Background()
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		obslog.Warnf("authcache: redis delete failed for %q: %v", key, err)
	}
}

// Clear removes every key under this cache's prefix and resets counters.
// Implemented with SCAN rather than FLUSHDB so a shared Redis instance
// serving multiple stations is not disturbed.
func (r *RedisCache) Clear() {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		obslog.Warnf("authcache: redis scan failed during clear: %v", err)
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			obslog.Warnf("authcache: redis delete failed during clear: %v", err)
		}
	}
	r.hits.Store(0)
	r.misses.Store(0)
	r.evictions.Store(0)
	r.throttled.Store(0)
}

// Stats reports the cache's counters. Size reflects the keyspace at call
// time via SCAN and is advisory under concurrent writers.
func (r *RedisCache) Stats() Stats {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+":entry:*", 0).Iterator()
	size := 0
	for iter.Next(ctx) {
		size++
	}
	return Stats{
		Size:      size,
		Hits:      r.hits.Load(),
		Misses:    r.misses.Load(),
		Evictions: r.evictions.Load(),
		Throttled: r.throttled.Load(),
	}
}

var _ Store = (*Cache)(nil)
var _ Store = (*RedisCache)(nil)
