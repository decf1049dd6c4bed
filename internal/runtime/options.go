package runtime

import (
	"fmt"
	"strings"
	"time"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/rs/zerolog"
)

// NoOpPolicy controls how a disabled action is reported to the user.
type NoOpPolicy string

const (
	// NoOpSilent re-renders the current screen without a notice.
	NoOpSilent NoOpPolicy = "silent"
	// NoOpNotify re-renders the current screen with a short notice.
	NoOpNotify NoOpPolicy = "notify"
)

// ParseNoOpPolicy parses a policy name. The empty string means NoOpSilent.
func ParseNoOpPolicy(s string) (NoOpPolicy, error) {
	switch p := NoOpPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", NoOpSilent:
		return NoOpSilent, nil
	case NoOpNotify:
		return p, nil
	}
	return "", fmt.Errorf("unknown noop policy %q (expected silent or notify)", s)
}

// DefaultMaxHistory caps the breadcrumb kept for history-aware Back.
const DefaultMaxHistory = 32

// User-facing notices attached to non-move outcomes.
const (
	NoticeNoOp       = "This action is not available here."
	NoticeIllegal    = "That button is no longer active. Here is where you are."
	NoticeEmptyInput = "Please type your question."
)

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithNoOpPolicy selects how disabled actions are reported.
func WithNoOpPolicy(p NoOpPolicy) Option {
	return func(e *Engine) {
		e.noop = p
	}
}

// WithMaxHistory bounds the Back breadcrumb. Values below 1 are ignored.
func WithMaxHistory(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHistory = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}
