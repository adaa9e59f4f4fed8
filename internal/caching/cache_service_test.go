package caching

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, CacheService) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, NewRedisCacheService(mr.Addr(), "", 0)
}

func TestIsRateLimited_FixedWindow(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		limited, err := cache.IsRateLimited(ctx, "orders:alice", 2, time.Minute)
		assert.NoError(t, err)
		assert.False(t, limited)
	}

	limited, err := cache.IsRateLimited(ctx, "orders:alice", 2, time.Minute)
	assert.NoError(t, err)
	assert.True(t, limited)

	// Counter resets once the window lapses.
	mr.FastForward(time.Minute + time.Second)
	limited, err = cache.IsRateLimited(ctx, "orders:alice", 2, time.Minute)
	assert.NoError(t, err)
	assert.False(t, limited)
}

func TestIsRateLimited_BackfillsMissingExpiry(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	// A counter that lost its TTL must be given one instead of limiting
	// the caller forever.
	assert.NoError(t, mr.Set("devboma:ratelimit:orders:bob", "99"))

	_, err := cache.IsRateLimited(ctx, "orders:bob", 2, time.Minute)
	assert.NoError(t, err)
	assert.Greater(t, mr.TTL("devboma:ratelimit:orders:bob"), time.Duration(0))
}
