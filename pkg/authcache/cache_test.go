package authcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocppauth/core/pkg/authmodel"
)

func acceptedResult() authmodel.AuthorizationResult {
	return authmodel.AuthorizationResult{Status: authmodel.StatusAccepted, Method: authmodel.MethodRemoteAuthorization}
}

func TestCache_SetAndGet(t *testing.T) {
	t.Parallel()

	c := New(10, time.Minute)
	c.Set("TAG1", acceptedResult(), nil)

	got, ok := c.Get("TAG1")
	require.True(t, ok)
	assert.Equal(t, authmodel.StatusAccepted, got.Status)
}

func TestCache_Get_Miss(t *testing.T) {
	t.Parallel()

	c := New(10, time.Minute)
	_, ok := c.Get("MISSING")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestCache_Get_ExpiredEntryIsEvictedAndCountsAsMiss(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := &now
	c := New(10, time.Minute, WithClock(func() time.Time { return *clock }))

	c.Set("TAG1", acceptedResult(), nil)
	*clock = clock.Add(2 * time.Minute)

	_, ok := c.Get("TAG1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Size)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestCache_Set_TTLOverride(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := &now
	c := New(10, time.Hour, WithClock(func() time.Time { return *clock }))

	ttl := 30
	c.Set("TAG1", acceptedResult(), &ttl)

	*clock = clock.Add(31 * time.Second)
	_, ok := c.Get("TAG1")
	assert.False(t, ok, "entry should have expired per the 30s override, not the 1h default")
}

func TestCache_EvictsLRUWhenOverCapacity(t *testing.T) {
	t.Parallel()

	c := New(2, time.Minute)
	c.Set("A", acceptedResult(), nil)
	c.Set("B", acceptedResult(), nil)
	c.Get("A") // touch A so B becomes the LRU entry
	c.Set("C", acceptedResult(), nil)

	_, aOK := c.Get("A")
	_, bOK := c.Get("B")
	_, cOK := c.Get("C")

	assert.True(t, aOK, "A was recently touched, should survive")
	assert.False(t, bOK, "B was the LRU entry, should have been evicted")
	assert.True(t, cOK)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_RateLimitsWritesPerIdentifier(t *testing.T) {
	t.Parallel()

	c := New(10, time.Minute, WithRateLimit(2, time.Minute))

	assert.True(t, c.Set("TAG1", acceptedResult(), nil))
	assert.True(t, c.Set("TAG1", acceptedResult(), nil))
	assert.False(t, c.Set("TAG1", acceptedResult(), nil), "third write within the window should be throttled")
	assert.Equal(t, int64(1), c.Stats().Throttled)
}

func TestCache_RateLimitResetsAfterWindow(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := &now
	c := New(10, time.Minute, WithClock(func() time.Time { return *clock }), WithRateLimit(1, time.Minute))

	assert.True(t, c.Set("TAG1", acceptedResult(), nil))
	assert.False(t, c.Set("TAG1", acceptedResult(), nil))

	*clock = clock.Add(2 * time.Minute)
	assert.True(t, c.Set("TAG1", acceptedResult(), nil), "window should have rolled over")
}

func TestCache_Remove_IdempotentOnMissingKey(t *testing.T) {
	t.Parallel()

	c := New(10, time.Minute)
	c.Remove("NEVER_SET")

	c.Set("TAG1", acceptedResult(), nil)
	c.Remove("TAG1")
	c.Remove("TAG1")

	_, ok := c.Get("TAG1")
	assert.False(t, ok)
}

func TestCache_Clear_ResetsEverything(t *testing.T) {
	t.Parallel()

	c := New(10, time.Minute, WithRateLimit(1, time.Minute))
	c.Set("TAG1", acceptedResult(), nil)
	c.Get("TAG1")
	c.Get("MISSING")
	c.Set("TAG1", acceptedResult(), nil) // throttled

	c.Clear()

	stats := c.Stats()
	assert.Zero(t, stats.Size)
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.Throttled)
	assert.Nil(t, stats.LastEvictionAt)

	assert.True(t, c.Set("TAG1", acceptedResult(), nil), "rate limit window should also have reset")
}

var _ Store = (*Cache)(nil)
