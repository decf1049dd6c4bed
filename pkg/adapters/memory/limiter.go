package memory

import (
	"context"
	"sync"
	"time"
)

// Limiter is a fixed-window rate limiter kept in process memory.
// It implements ports.RateLimiter.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	count int
}

// NewLimiter allows limit attempts per key within each window.
func NewLimiter(limit int, win time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  win,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// WithClock overrides the time source. Intended for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow records an attempt and reports whether key is still within budget.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.gc(now)
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.limit, nil
}

// gc drops elapsed windows so idle keys don't accumulate.
func (l *Limiter) gc(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, k)
		}
	}
}
