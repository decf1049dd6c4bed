package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition    EventType = "transition"
	EventOutcome       EventType = "outcome"
	EventRenderFailure EventType = "render_failure"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
}

// TransitionEvent is emitted when a session moves to another screen.
type TransitionEvent struct {
	EventBase
	From   ScreenID    `json:"from"`
	To     ScreenID    `json:"to"`
	Action ActionLabel `json:"action"`
}

// OutcomeEvent is emitted once per advance call.
type OutcomeEvent struct {
	EventBase
	Screen   ScreenID      `json:"screen"`
	Action   ActionLabel   `json:"action"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration"`
}

// RenderFailureEvent is emitted when content could not be rendered.
type RenderFailureEvent struct {
	EventBase
	Screen  ScreenID   `json:"screen"`
	Content ContentRef `json:"content"`
	Err     error      `json:"-"`
}

// LifecycleHooks defines callbacks for navigator observability.
type LifecycleHooks struct {
	OnTransition    func(context.Context, *TransitionEvent)
	OnOutcome       func(context.Context, *OutcomeEvent)
	OnRenderFailure func(context.Context, *RenderFailureEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition:    chain(h.OnTransition, other.OnTransition),
		OnOutcome:       chain(h.OnOutcome, other.OnOutcome),
		OnRenderFailure: chain(h.OnRenderFailure, other.OnRenderFailure),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
