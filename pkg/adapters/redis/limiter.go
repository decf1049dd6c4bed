package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// incrScript increments the window counter and starts the window on the first hit.
var incrScript = backend.NewScript(`
local n = redis.call("incr", KEYS[1])
if n == 1 then
	redis.call("pexpire", KEYS[1], ARGV[1])
end
return n
`)

// Limiter is a fixed-window rate limiter shared by every replica.
// It implements ports.RateLimiter.
type Limiter struct {
	client *backend.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewLimiter allows limit attempts per key within each window.
func NewLimiter(client *backend.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

// Allow records an attempt and reports whether key is still within budget.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + "ratelimit:" + key

	n, err := incrScript.Run(ctx, l.client, []string{k}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limiter: %w", err)
	}
	return n <= l.limit, nil
}
