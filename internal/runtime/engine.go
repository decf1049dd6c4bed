package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/session"
	"github.com/mygenetics/reportnav/pkg/transition"
	"github.com/rs/zerolog"
)

// Result describes what happened during an Advance call.
type Result struct {
	Outcome     domain.Outcome
	Instruction domain.RenderInstruction

	// Signal carries the user-level error behind a non-move outcome
	// (ErrIllegalAction, ErrEmptyInput). It is informational only.
	Signal error

	// Notice is a short message to show above the screen, if any.
	Notice string

	// Question is set when a free-text question was captured and must be
	// handed to the question-answering escalation.
	Question string

	// From is the screen the session was on before the call.
	From domain.ScreenID

	// Session is a snapshot of the session after the call.
	Session *domain.Session
}

// Moved reports whether the call changed the current screen.
func (r *Result) Moved() bool {
	return r.Outcome == domain.OutcomeMoved
}

// Engine is the navigation state machine.
// It is stateless apart from its configuration; all per-user state lives in
// the session store and every call runs under the user's lock.
type Engine struct {
	table    *transition.Table
	sessions *session.Manager

	logger     zerolog.Logger
	hooks      domain.LifecycleHooks
	noop       NoOpPolicy
	maxHistory int
	now        func() time.Time
}

// NewEngine creates a new engine with dependencies.
func NewEngine(table *transition.Table, sessions *session.Manager, opts ...Option) *Engine {
	e := &Engine{
		table:      table,
		sessions:   sessions,
		logger:     zerolog.Nop(),
		noop:       NoOpSilent,
		maxHistory: DefaultMaxHistory,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the transition table the engine navigates.
func (e *Engine) Table() *transition.Table {
	return e.table
}

// Advance applies one inbound event to the user's session.
//
// User mistakes (unadvertised actions, stale buttons, blank questions) are not
// errors: they yield a Result that re-renders the current screen and leave the
// stored session untouched. The returned error is reserved for store failures
// and for sessions pointing at a screen that no longer exists
// (domain.ErrUnknownScreen).
func (e *Engine) Advance(ctx context.Context, in domain.Inbound) (*Result, error) {
	started := e.now()
	var res *Result

	err := e.sessions.Transact(ctx, in.UserID, e.table.Entry(), func(ctx context.Context, s *domain.Session, fresh bool) (bool, error) {
		var err error
		res, err = e.step(ctx, s, in)
		if err != nil {
			return false, err
		}
		if res.Moved() {
			s.UpdatedAt = e.now()
		}
		res.Session = s.Snapshot()
		return res.Moved(), nil
	})
	if err != nil {
		e.logger.Error().Err(err).
			Str("user_id", in.UserID).
			Str("action", string(in.Label)).
			Msg("advance failed")
		e.emitOutcome(ctx, in, "", domain.OutcomeFailed, e.now().Sub(started))
		return nil, err
	}

	e.emitOutcome(ctx, in, res.From, res.Outcome, e.now().Sub(started))
	return res, nil
}

// step computes the outcome for s and mutates it in place on moves.
func (e *Engine) step(ctx context.Context, s *domain.Session, in domain.Inbound) (*Result, error) {
	from := s.Screen
	current, err := e.table.Screen(from)
	if err != nil {
		return nil, err
	}

	stay := func(outcome domain.Outcome, signal error, notice string) (*Result, error) {
		e.logger.Debug().
			Str("user_id", s.UserID).
			Str("screen", string(from)).
			Str("action", string(in.Label)).
			Str("outcome", string(outcome)).
			Msg("staying on screen")
		return &Result{
			Outcome:     outcome,
			Instruction: instructionFor(current, s),
			Signal:      signal,
			Notice:      notice,
			From:        from,
		}, nil
	}

	// Text typed on an input screen wins over a button label; elsewhere the
	// label is resolved and stray text is ignored.
	if in.IsText() || (s.AwaitingText && in.Text != "") {
		if !s.AwaitingText {
			return stay(domain.OutcomeIllegalAction,
				&transition.IllegalActionError{Screen: from, Label: domain.ActionFreeText, Reason: "not expecting text"},
				NoticeIllegal)
		}
		question := strings.TrimSpace(in.Text)
		if question == "" {
			return stay(domain.OutcomeEmptyInput, domain.ErrEmptyInput, NoticeEmptyInput)
		}
		res, err := e.table.Resolve(from, domain.ActionFreeText)
		if err != nil {
			return nil, fmt.Errorf("awaiting text on %s: %w", from, err)
		}
		s.Question = question
		r, err := e.moveTo(ctx, s, from, domain.ActionFreeText, res)
		if err != nil {
			return nil, err
		}
		r.Question = question
		return r, nil
	}

	if in.Origin != "" && in.Origin != from {
		return stay(domain.OutcomeIllegalAction,
			&transition.IllegalActionError{Screen: from, Label: in.Label, Reason: fmt.Sprintf("button belongs to %s", in.Origin)},
			NoticeIllegal)
	}

	res, err := e.table.Resolve(from, in.Label)
	var illegal *transition.IllegalActionError
	switch {
	case errors.As(err, &illegal):
		return stay(domain.OutcomeIllegalAction, err, "")
	case err != nil:
		return nil, err
	case res.NoOp:
		notice := ""
		if e.noop == NoOpNotify {
			notice = NoticeNoOp
		}
		return stay(domain.OutcomeNoOp, nil, notice)
	}

	return e.moveTo(ctx, s, from, in.Label, res)
}

// Current returns the render instruction for the user's current screen
// without changing anything. Users without a session see the entry screen.
func (e *Engine) Current(ctx context.Context, userID string) (*Result, error) {
	var res *Result
	err := e.sessions.Transact(ctx, userID, e.table.Entry(), func(_ context.Context, s *domain.Session, _ bool) (bool, error) {
		screen, err := e.table.Screen(s.Screen)
		if err != nil {
			return false, err
		}
		res = &Result{
			Outcome:     domain.OutcomeNoOp,
			Instruction: instructionFor(screen, s),
			From:        s.Screen,
			Session:     s.Snapshot(),
		}
		return false, nil
	})
	return res, err
}

// Restart positions the user on the entry screen with a clean session.
func (e *Engine) Restart(ctx context.Context, userID string) (*Result, error) {
	entry, err := e.table.Screen(e.table.Entry())
	if err != nil {
		return nil, err
	}

	var res *Result
	err = e.sessions.Transact(ctx, userID, entry.ID, func(ctx context.Context, s *domain.Session, _ bool) (bool, error) {
		from := s.Screen
		*s = *domain.NewSession(userID, entry.ID, e.now())
		res = &Result{
			Outcome:     domain.OutcomeMoved,
			Instruction: instructionFor(entry, s),
			From:        from,
			Session:     s.Snapshot(),
		}
		if from != entry.ID {
			e.emitTransition(ctx, userID, from, entry.ID, "")
		}
		return true, nil
	})
	return res, err
}

func instructionFor(screen domain.Screen, s *domain.Session) domain.RenderInstruction {
	vars := map[string]string{}
	if s.Question != "" {
		vars["question"] = s.Question
	}
	return domain.RenderInstruction{
		Screen:  screen.ID,
		Content: screen.Content,
		Actions: screen.Clone().Actions,
		Vars:    vars,
	}
}

func (e *Engine) emitOutcome(ctx context.Context, in domain.Inbound, screen domain.ScreenID, outcome domain.Outcome, d time.Duration) {
	if e.hooks.OnOutcome == nil {
		return
	}
	e.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventOutcome, UserID: in.UserID},
		Screen:    screen,
		Action:    in.Label,
		Outcome:   outcome,
		Duration:  d,
	})
}

func (e *Engine) emitTransition(ctx context.Context, userID string, from, to domain.ScreenID, label domain.ActionLabel) {
	if e.hooks.OnTransition == nil {
		return
	}
	e.hooks.OnTransition(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventTransition, UserID: userID},
		From:      from,
		To:        to,
		Action:    label,
	})
}
