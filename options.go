package reportnav

import (
	"time"

	"github.com/mygenetics/reportnav/internal/runtime"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/dsl"
	"github.com/mygenetics/reportnav/pkg/observability"
	"github.com/mygenetics/reportnav/pkg/ports"
	"github.com/rs/zerolog"
)

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithGraph replaces the built-in report graph.
// Bodies declared in the graph are served unless WithContent is also given.
func WithGraph(g *dsl.Graph) Option {
	return func(b *Bot) {
		b.graph = g
	}
}

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(store ports.SessionStore) Option {
	return func(b *Bot) {
		b.store = store
	}
}

// WithLocker adds a distributed lock around each user's actions.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(b *Bot) {
		b.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(b *Bot) {
		b.lockTTL = ttl
	}
}

// WithContent sets the content resolver used to render screens.
func WithContent(resolver ports.ContentResolver) Option {
	return func(b *Bot) {
		b.content = resolver
	}
}

// WithAnswerer sets the collaborator answering free-text questions.
func WithAnswerer(a ports.Answerer) Option {
	return func(b *Bot) {
		b.answerer = a
	}
}

// WithRateLimiter bounds how often a user may submit questions.
// Pass nil to disable limiting.
func WithRateLimiter(l ports.RateLimiter) Option {
	return func(b *Bot) {
		b.limiter = l
		b.limiterSet = true
	}
}

// WithInteractionLog records every handled exchange in log.
func WithInteractionLog(log ports.InteractionLog) Option {
	return func(b *Bot) {
		b.audit = log
	}
}

// WithMetrics records navigation metrics into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(b *Bot) {
		b.metrics = m
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithNoOpPolicy selects how disabled buttons are acknowledged.
func WithNoOpPolicy(p runtime.NoOpPolicy) Option {
	return func(b *Bot) {
		b.noop = p
	}
}

// WithMaxHistory bounds the breadcrumb used by history-aware Back.
func WithMaxHistory(n int) Option {
	return func(b *Bot) {
		b.maxHistory = n
	}
}

// WithMaxInputSize limits free-text messages to n bytes. Longer messages are
// rejected with ErrInvalidEvent.
func WithMaxInputSize(n int) Option {
	return func(b *Bot) {
		b.maxInput = n
	}
}

// WithFallbackText sets the text shown when content cannot be rendered.
func WithFallbackText(text string) Option {
	return func(b *Bot) {
		b.fallbackText = text
	}
}

// WithApology sets the answer shown when the answerer fails.
func WithApology(text string) Option {
	return func(b *Bot) {
		b.apology = text
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}
