package reportnav

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/mygenetics/reportnav/internal/runtime"
	"github.com/mygenetics/reportnav/internal/sanitize"
	"github.com/mygenetics/reportnav/pkg/adapters/memory"
	"github.com/mygenetics/reportnav/pkg/adapters/openai"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/dsl"
	"github.com/mygenetics/reportnav/pkg/observability"
	"github.com/mygenetics/reportnav/pkg/ports"
	"github.com/mygenetics/reportnav/pkg/report"
	"github.com/mygenetics/reportnav/pkg/session"
	"github.com/mygenetics/reportnav/pkg/transition"
	"github.com/rs/zerolog"
)

// NoOpPolicy controls how a disabled button is acknowledged.
type NoOpPolicy = runtime.NoOpPolicy

const (
	NoOpSilent = runtime.NoOpSilent
	NoOpNotify = runtime.NoOpNotify
)

// ParseNoOpPolicy parses "silent" or "notify".
func ParseNoOpPolicy(s string) (NoOpPolicy, error) {
	return runtime.ParseNoOpPolicy(s)
}

// Question rate limit applied when no limiter is configured.
const (
	DefaultRateLimit  = 5
	DefaultRateWindow = time.Minute
)

// User-facing texts used when something goes wrong.
const (
	DefaultFallbackText = "Sorry, this section is temporarily unavailable. Please try again later."
	DefaultApology      = "Sorry, I could not answer your question right now. Please try again later."
	DefaultStaticAnswer = "Thank you for your question! Our specialists will get back to you soon."

	NoticeRateLimited = "Too many requests! Please wait a moment."
	NoticeRestarted   = "Your session was reset. Here is the beginning of your report."
)

// ErrInvalidEvent marks inbound events a transport should reject as malformed.
var ErrInvalidEvent = errors.New("invalid inbound event")

// Reply is what a transport sends back to the user.
type Reply struct {
	Outcome domain.Outcome  `json:"outcome"`
	Notice  string          `json:"notice,omitempty"`
	Payload domain.Payload  `json:"payload"`
	Screen  domain.ScreenID `json:"screen,omitempty"`

	// Answer is the escalation answer when a question was captured.
	Answer string `json:"answer,omitempty"`

	// Degraded is set when the session store could not be reached and the
	// payload is a bare fallback.
	Degraded bool `json:"degraded,omitempty"`
}

// Bot is the high-level entry point of the navigator.
// It wraps the internal runtime and adds rate limiting, question escalation
// and render fallbacks.
type Bot struct {
	graph      *dsl.Graph
	engine     *runtime.Engine
	dispatcher *runtime.Dispatcher
	sessions   *session.Manager

	store      ports.SessionStore
	locker     ports.DistributedLocker
	content    ports.ContentResolver
	answerer   ports.Answerer
	limiter    ports.RateLimiter
	limiterSet bool
	audit      ports.InteractionLog
	metrics    *observability.Metrics
	hooks      domain.LifecycleHooks
	logger     zerolog.Logger

	noop         NoOpPolicy
	lockTTL      time.Duration
	maxHistory   int
	maxInput     int
	fallbackText string
	apology      string
	now          func() time.Time
}

// New initializes a Bot. Without options it serves the built-in report from
// memory with a static answerer.
func New(opts ...Option) (*Bot, error) {
	b := &Bot{
		logger:       zerolog.Nop(),
		fallbackText: DefaultFallbackText,
		apology:      DefaultApology,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.graph == nil {
		g, err := report.Graph()
		if err != nil {
			return nil, fmt.Errorf("failed to build report graph: %w", err)
		}
		b.graph = g
	}
	if b.content == nil {
		b.content = memory.NewContent(b.graph.Content)
	}
	if b.store == nil {
		b.store = memory.NewStore(memory.WithClock(b.now))
	}
	if b.answerer == nil {
		b.answerer = openai.Static(DefaultStaticAnswer)
	}
	if !b.limiterSet {
		b.limiter = memory.NewLimiter(DefaultRateLimit, DefaultRateWindow).WithClock(b.now)
	}
	if b.metrics != nil {
		b.hooks = b.hooks.Merge(b.metrics.Hooks())
	}

	sessionOpts := []session.Option{
		session.WithLogger(b.logger),
		session.WithClock(b.now),
	}
	if b.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(b.locker))
	}
	if b.lockTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithLockTTL(b.lockTTL))
	}
	b.sessions = session.NewManager(b.store, sessionOpts...)

	engineOpts := []runtime.Option{
		runtime.WithLogger(b.logger),
		runtime.WithLifecycleHooks(b.hooks),
		runtime.WithClock(b.now),
	}
	if b.noop != "" {
		engineOpts = append(engineOpts, runtime.WithNoOpPolicy(b.noop))
	}
	if b.maxHistory > 0 {
		engineOpts = append(engineOpts, runtime.WithMaxHistory(b.maxHistory))
	}
	b.engine = runtime.NewEngine(b.graph.Table, b.sessions, engineOpts...)
	b.dispatcher = runtime.NewDispatcher(b.content)

	return b, nil
}

// Handle processes one inbound event and returns the reply to send.
//
// User mistakes and infrastructure trouble both produce a reply; the error is
// reserved for malformed events (wrapping ErrInvalidEvent) and canceled contexts.
func (b *Bot) Handle(ctx context.Context, in domain.Inbound) (*Reply, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidEvent)
	}
	if !in.IsText() && in.Label == "" {
		return nil, fmt.Errorf("%w: missing action", ErrInvalidEvent)
	}
	if in.Text != "" {
		text, err := sanitize.Input(in.Text, b.maxInput)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		}
		in.Text = text
	}

	if in.IsText() && b.limiter != nil {
		allowed, err := b.limiter.Allow(ctx, in.UserID)
		if err != nil {
			b.logger.Warn().Err(err).Str("user_id", in.UserID).Msg("rate limiter unavailable, allowing message")
		} else if !allowed {
			return b.rateLimited(ctx, in.UserID)
		}
	}

	res, err := b.engine.Advance(ctx, in)
	if err != nil {
		return b.recoverFrom(ctx, in.UserID, err)
	}

	reply := &Reply{
		Outcome: res.Outcome,
		Notice:  res.Notice,
		Screen:  res.Instruction.Screen,
	}
	instr := res.Instruction
	if res.Question != "" {
		reply.Answer = b.answer(ctx, in.UserID, res.Question)
		instr.Vars = maps.Clone(instr.Vars)
		if instr.Vars == nil {
			instr.Vars = map[string]string{}
		}
		instr.Vars["answer"] = reply.Answer
	}
	reply.Payload = b.render(ctx, in.UserID, instr)

	action := in.Label
	if action == "" {
		action = domain.ActionFreeText
	}
	b.record(ctx, domain.Interaction{
		UserID:   in.UserID,
		From:     res.From,
		Screen:   reply.Screen,
		Action:   action,
		Outcome:  reply.Outcome,
		Question: res.Question,
		Answer:   reply.Answer,
		At:       b.now(),
	})
	return reply, nil
}

func (b *Bot) record(ctx context.Context, i domain.Interaction) {
	if b.audit == nil {
		return
	}
	if err := b.audit.Record(ctx, i); err != nil {
		b.logger.Warn().Err(err).Str("user_id", i.UserID).Msg("failed to record interaction")
	}
}

// Start positions the user on the entry screen and renders it.
func (b *Bot) Start(ctx context.Context, userID string) (*Reply, error) {
	res, err := b.engine.Restart(ctx, userID)
	if err != nil {
		return b.recoverFrom(ctx, userID, err)
	}
	return &Reply{
		Outcome: res.Outcome,
		Screen:  res.Instruction.Screen,
		Payload: b.render(ctx, userID, res.Instruction),
	}, nil
}

// Current renders the user's current screen without changing anything.
func (b *Bot) Current(ctx context.Context, userID string) (*Reply, error) {
	res, err := b.engine.Current(ctx, userID)
	if err != nil {
		return b.recoverFrom(ctx, userID, err)
	}
	return &Reply{
		Outcome: res.Outcome,
		Screen:  res.Instruction.Screen,
		Payload: b.render(ctx, userID, res.Instruction),
	}, nil
}

// Session returns the stored session of a user.
// Returns domain.ErrSessionNotFound when the user has none.
func (b *Bot) Session(ctx context.Context, userID string) (*domain.Session, error) {
	return b.sessions.Load(ctx, userID)
}

// Reset forgets the user's session.
func (b *Bot) Reset(ctx context.Context, userID string) error {
	return b.sessions.Expire(ctx, userID)
}

// ActiveUsers lists users with a live session.
func (b *Bot) ActiveUsers(ctx context.Context) ([]string, error) {
	return b.sessions.List(ctx)
}

// Screens returns the registered screens in declaration order.
func (b *Bot) Screens() []domain.Screen {
	return b.graph.Registry.Screens()
}

// Table returns the transition table.
func (b *Bot) Table() *transition.Table {
	return b.graph.Table
}

// Graph returns the graph the bot navigates.
func (b *Bot) Graph() *dsl.Graph {
	return b.graph
}

// Metrics returns the metrics configured with WithMetrics, or nil.
func (b *Bot) Metrics() *observability.Metrics {
	return b.metrics
}

func (b *Bot) rateLimited(ctx context.Context, userID string) (*Reply, error) {
	b.logger.Info().Str("user_id", userID).Msg("question rate limit exceeded")
	if b.hooks.OnOutcome != nil {
		b.hooks.OnOutcome(ctx, &domain.OutcomeEvent{
			EventBase: domain.EventBase{Timestamp: b.now(), Type: domain.EventOutcome, UserID: userID},
			Action:    domain.ActionFreeText,
			Outcome:   domain.OutcomeRateLimited,
		})
	}
	reply, err := b.Current(ctx, userID)
	if err != nil || reply.Degraded {
		return reply, err
	}
	reply.Outcome = domain.OutcomeRateLimited
	reply.Notice = NoticeRateLimited
	return reply, nil
}

// recoverFrom turns engine failures into a reply.
// A session pointing at a screen that no longer exists is discarded so the
// user starts over; store failures yield a degraded fallback.
func (b *Bot) recoverFrom(ctx context.Context, userID string, err error) (*Reply, error) {
	if ctx.Err() != nil {
		return nil, err
	}

	if errors.Is(err, domain.ErrUnknownScreen) {
		b.logger.Error().Err(err).Str("user_id", userID).Msg("session points at unknown screen, resetting")
		if expErr := b.sessions.Expire(ctx, userID); expErr != nil {
			b.logger.Error().Err(expErr).Str("user_id", userID).Msg("failed to expire session")
			return b.degraded(), nil
		}
		res, curErr := b.engine.Current(ctx, userID)
		if curErr != nil {
			b.logger.Error().Err(curErr).Str("user_id", userID).Msg("failed to render entry screen")
			return b.degraded(), nil
		}
		return &Reply{
			Outcome: domain.OutcomeFailed,
			Notice:  NoticeRestarted,
			Screen:  res.Instruction.Screen,
			Payload: b.render(ctx, userID, res.Instruction),
		}, nil
	}

	b.logger.Error().Err(err).Str("user_id", userID).Msg("session store unavailable")
	return b.degraded(), nil
}

func (b *Bot) degraded() *Reply {
	return &Reply{
		Outcome:  domain.OutcomeFailed,
		Payload:  domain.Payload{Text: b.fallbackText},
		Degraded: true,
	}
}

// answer escalates a captured question. Failures are logged and answered
// with the apology text.
func (b *Bot) answer(ctx context.Context, userID, question string) string {
	text, err := b.answerer.Answer(ctx, ports.Question{UserID: userID, Text: question})
	if b.metrics != nil {
		b.metrics.RecordEscalation(err == nil)
	}
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID).Msg("question escalation failed")
		return b.apology
	}
	return text
}

func (b *Bot) render(ctx context.Context, userID string, instr domain.RenderInstruction) domain.Payload {
	payload, err := b.dispatcher.Render(ctx, instr)
	if err == nil {
		return payload
	}

	b.logger.Error().Err(err).
		Str("user_id", userID).
		Str("screen", string(instr.Screen)).
		Str("content", string(instr.Content)).
		Msg("render failed")
	if b.hooks.OnRenderFailure != nil {
		b.hooks.OnRenderFailure(ctx, &domain.RenderFailureEvent{
			EventBase: domain.EventBase{Timestamp: b.now(), Type: domain.EventRenderFailure, UserID: userID},
			Screen:    instr.Screen,
			Content:   instr.Content,
			Err:       err,
		})
	}
	return b.dispatcher.Fallback(instr, b.fallbackText)
}
