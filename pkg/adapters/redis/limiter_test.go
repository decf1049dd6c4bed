package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/mygenetics/reportnav/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr, client := newClient(t)
	limiter := redis.NewLimiter(client, "test:", 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, err := limiter.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok, "6th question inside the window is refused")

	ok, err = limiter.Allow(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, time.Minute, mr.TTL("test:ratelimit:u1"))

	mr.FastForward(time.Minute)
	ok, err = limiter.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok, "window resets")
}
