package runtime_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mygenetics/reportnav/internal/runtime"
	"github.com/mygenetics/reportnav/pkg/adapters/memory"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/report"
	"github.com/mygenetics/reportnav/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	engine *runtime.Engine
	store  *memory.Store
}

func newHarness(t *testing.T, opts ...runtime.Option) *harness {
	t.Helper()
	g, err := report.Graph()
	require.NoError(t, err)

	store := memory.NewStore()
	return &harness{
		engine: runtime.NewEngine(g.Table, session.NewManager(store), opts...),
		store:  store,
	}
}

func (h *harness) press(t *testing.T, user string, label domain.ActionLabel) *runtime.Result {
	t.Helper()
	res, err := h.engine.Advance(context.Background(), domain.Inbound{UserID: user, Label: label})
	require.NoError(t, err)
	return res
}

func (h *harness) text(t *testing.T, user, text string) *runtime.Result {
	t.Helper()
	res, err := h.engine.Advance(context.Background(), domain.Inbound{UserID: user, Label: domain.ActionFreeText, Text: text})
	require.NoError(t, err)
	return res
}

func (h *harness) stored(t *testing.T, user string) *domain.Session {
	t.Helper()
	s, err := h.store.Load(context.Background(), user)
	require.NoError(t, err)
	return s
}

func TestEngine_DetoxDeepDiveAndBack(t *testing.T) {
	h := newHarness(t)
	steps := []struct {
		label domain.ActionLabel
		want  domain.ScreenID
	}{
		{domain.ActionForward, report.ScreenMenu},
		{domain.Open("detox"), "SHOW_DETOX_SUMMARY"},
		{domain.ActionMoreDetails, "SHOW_DETOX_DETAIL"},
		{domain.ActionBack, "SHOW_DETOX_SUMMARY"},
		{domain.ActionBack, report.ScreenMenu},
	}

	for _, step := range steps {
		res := h.press(t, "u1", step.label)
		assert.Equal(t, domain.OutcomeMoved, res.Outcome, "action %s", step.label)
		assert.Equal(t, step.want, res.Instruction.Screen, "action %s", step.label)
	}

	assert.Equal(t, report.ScreenMenu, h.stored(t, "u1").Screen)
}

func TestEngine_QuestionFlow(t *testing.T) {
	h := newHarness(t)

	h.press(t, "u1", domain.ActionForward)
	res := h.press(t, "u1", domain.ActionAskQuestion)
	require.Equal(t, report.ScreenInput, res.Instruction.Screen)
	assert.True(t, h.stored(t, "u1").AwaitingText)

	t.Run("Blank Text", func(t *testing.T) {
		res := h.text(t, "u1", "   ")
		assert.Equal(t, domain.OutcomeEmptyInput, res.Outcome)
		assert.ErrorIs(t, res.Signal, domain.ErrEmptyInput)
		assert.Equal(t, report.ScreenInput, res.Instruction.Screen)
		assert.Empty(t, res.Question)
	})

	res = h.text(t, "u1", "  What does GSTP1 mean?  ")
	assert.Equal(t, domain.OutcomeMoved, res.Outcome)
	assert.Equal(t, report.ScreenQuestion, res.Instruction.Screen)
	assert.Equal(t, "What does GSTP1 mean?", res.Question)
	assert.Equal(t, "What does GSTP1 mean?", res.Instruction.Vars["question"])

	s := h.stored(t, "u1")
	assert.False(t, s.AwaitingText)
	assert.Equal(t, "What does GSTP1 mean?", s.Question)

	t.Run("Text Outside Input Screen", func(t *testing.T) {
		res := h.text(t, "u1", "another question")
		assert.Equal(t, domain.OutcomeIllegalAction, res.Outcome)
		assert.Equal(t, report.ScreenQuestion, res.Instruction.Screen)
		assert.Empty(t, res.Question)
	})

	res = h.press(t, "u1", domain.ActionBack)
	assert.Equal(t, report.ScreenMenu, res.Instruction.Screen)
}

func TestEngine_InputScreenBackButton(t *testing.T) {
	h := newHarness(t)
	h.press(t, "u1", domain.ActionForward)
	h.press(t, "u1", domain.ActionAskQuestion)

	res := h.press(t, "u1", domain.ActionBack)
	assert.Equal(t, domain.OutcomeMoved, res.Outcome)
	assert.Equal(t, report.ScreenMenu, res.Instruction.Screen)
	assert.False(t, h.stored(t, "u1").AwaitingText)
}

func TestEngine_ButtonWithStrayText(t *testing.T) {
	h := newHarness(t)
	h.press(t, "u1", domain.ActionForward)

	res, err := h.engine.Advance(context.Background(), domain.Inbound{
		UserID: "u1",
		Label:  domain.ActionBack,
		Text:   "hi",
		Origin: report.ScreenMenu,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMoved, res.Outcome)
	assert.Nil(t, res.Signal)
	assert.Equal(t, report.ScreenSummary, res.Instruction.Screen)
	assert.Empty(t, res.Question)
	assert.Empty(t, h.stored(t, "u1").Question)

	t.Run("Typed On Input Screen", func(t *testing.T) {
		h.press(t, "u1", domain.ActionForward)
		h.press(t, "u1", domain.ActionAskQuestion)

		res, err := h.engine.Advance(context.Background(), domain.Inbound{
			UserID: "u1",
			Label:  domain.ActionBack,
			Text:   "Is coffee ok?",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeMoved, res.Outcome)
		assert.Equal(t, report.ScreenQuestion, res.Instruction.Screen)
		assert.Equal(t, "Is coffee ok?", res.Question)
	})
}

func TestEngine_EntryBackIsNoOp(t *testing.T) {
	t.Run("Silent", func(t *testing.T) {
		h := newHarness(t)
		res := h.press(t, "u1", domain.ActionBack)
		assert.Equal(t, domain.OutcomeNoOp, res.Outcome)
		assert.Equal(t, report.ScreenSummary, res.Instruction.Screen)
		assert.Empty(t, res.Notice)
		assert.NoError(t, res.Signal)
	})

	t.Run("Notify", func(t *testing.T) {
		h := newHarness(t, runtime.WithNoOpPolicy(runtime.NoOpNotify))
		res := h.press(t, "u1", domain.ActionBack)
		assert.Equal(t, domain.OutcomeNoOp, res.Outcome)
		assert.Equal(t, runtime.NoticeNoOp, res.Notice)
	})
}

func TestEngine_NonMovesAreIdempotent(t *testing.T) {
	h := newHarness(t)
	h.press(t, "u1", domain.ActionForward)
	h.press(t, "u1", domain.Open("carb"))
	before := h.stored(t, "u1")

	res := h.press(t, "u1", domain.ActionForward)
	assert.Equal(t, domain.OutcomeIllegalAction, res.Outcome)
	assert.ErrorIs(t, res.Signal, domain.ErrIllegalAction)

	res = h.press(t, "u1", domain.ActionAskQuestion)
	assert.Equal(t, domain.OutcomeIllegalAction, res.Outcome)

	after := h.stored(t, "u1")
	assert.Equal(t, before, after)
}

func TestEngine_FreshUserIllegalActionNotPersisted(t *testing.T) {
	h := newHarness(t)
	res := h.press(t, "new-user", domain.ActionMoreDetails)
	assert.Equal(t, domain.OutcomeIllegalAction, res.Outcome)
	assert.Equal(t, report.ScreenSummary, res.Instruction.Screen)

	_, err := h.store.Load(context.Background(), "new-user")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEngine_ForwardThenBackRoundTrip(t *testing.T) {
	g, err := report.Graph()
	require.NoError(t, err)
	ctx := context.Background()

	for _, screen := range g.Registry.Screens() {
		for _, label := range []domain.ActionLabel{domain.ActionForward, domain.ActionMoreDetails} {
			if _, ok := screen.Action(label); !ok {
				continue
			}
			t.Run(string(screen.ID)+"/"+string(label), func(t *testing.T) {
				h := newHarness(t)
				require.NoError(t, h.store.Save(ctx, domain.NewSession("u1", screen.ID, time.Now())))

				res := h.press(t, "u1", label)
				require.Equal(t, domain.OutcomeMoved, res.Outcome)

				res = h.press(t, "u1", domain.ActionBack)
				assert.Equal(t, screen.ID, res.Instruction.Screen)
			})
		}
	}
}

func TestEngine_SectionChainThenBack(t *testing.T) {
	h := newHarness(t)
	h.press(t, "u1", domain.ActionForward)
	h.press(t, "u1", domain.Open("detox"))
	h.press(t, "u1", domain.ActionMoreDetails)
	res := h.press(t, "u1", domain.ActionForward)
	require.Equal(t, domain.ScreenID("SHOW_BEHAVIOR_SUMMARY"), res.Instruction.Screen)

	res = h.press(t, "u1", domain.ActionBack)
	assert.Equal(t, domain.ScreenID("SHOW_DETOX_DETAIL"), res.Instruction.Screen)
}

func TestEngine_ConcurrentForwardFromEntry(t *testing.T) {
	h := newHarness(t)

	var wg sync.WaitGroup
	results := make([]*runtime.Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.engine.Advance(context.Background(), domain.Inbound{UserID: "u1", Label: domain.ActionForward})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	outcomes := []domain.Outcome{results[0].Outcome, results[1].Outcome}
	assert.ElementsMatch(t, []domain.Outcome{domain.OutcomeMoved, domain.OutcomeIllegalAction}, outcomes)
	assert.Equal(t, report.ScreenMenu, h.stored(t, "u1").Screen)
}

func TestEngine_StaleButton(t *testing.T) {
	h := newHarness(t)
	h.press(t, "u1", domain.ActionForward)

	// A Forward button from the summary message pressed again after moving on.
	res, err := h.engine.Advance(context.Background(), domain.Inbound{
		UserID: "u1",
		Label:  domain.ActionForward,
		Origin: report.ScreenSummary,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIllegalAction, res.Outcome)
	assert.Equal(t, runtime.NoticeIllegal, res.Notice)
	assert.Equal(t, report.ScreenMenu, res.Instruction.Screen)
	assert.Equal(t, report.ScreenMenu, h.stored(t, "u1").Screen)

	// A button from the current screen still works.
	res, err = h.engine.Advance(context.Background(), domain.Inbound{
		UserID: "u1",
		Label:  domain.Open("sport"),
		Origin: report.ScreenMenu,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMoved, res.Outcome)
}

func TestEngine_UnknownPersistedScreen(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Save(ctx, domain.NewSession("u1", "REMOVED_SCREEN", time.Now())))

	_, err := h.engine.Advance(ctx, domain.Inbound{UserID: "u1", Label: domain.ActionForward})
	assert.ErrorIs(t, err, domain.ErrUnknownScreen)

	res, err := h.engine.Restart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, report.ScreenSummary, res.Instruction.Screen)
	assert.Equal(t, report.ScreenSummary, h.stored(t, "u1").Screen)
}

func TestEngine_Current(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.engine.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, report.ScreenSummary, res.Instruction.Screen)

	h.press(t, "u1", domain.ActionForward)
	res, err = h.engine.Current(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, report.ScreenMenu, res.Instruction.Screen)
	assert.Len(t, res.Instruction.Actions, 7)
}

func TestEngine_HistoryIsBounded(t *testing.T) {
	h := newHarness(t, runtime.WithMaxHistory(4))
	h.press(t, "u1", domain.ActionForward)
	h.press(t, "u1", domain.Open("detox"))
	for i := 0; i < len(report.Sections); i++ {
		h.press(t, "u1", domain.ActionMoreDetails)
		h.press(t, "u1", domain.ActionForward)
	}

	assert.LessOrEqual(t, len(h.stored(t, "u1").History), 4)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var transitions []string
	var outcomes []domain.Outcome

	hooks := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			transitions = append(transitions, string(e.From)+">"+string(e.To))
		},
		OnOutcome: func(_ context.Context, e *domain.OutcomeEvent) {
			outcomes = append(outcomes, e.Outcome)
		},
	}
	h := newHarness(t, runtime.WithLifecycleHooks(hooks))

	h.press(t, "u1", domain.ActionBack)
	h.press(t, "u1", domain.ActionForward)
	h.press(t, "u1", domain.ActionForward)

	assert.Equal(t, []string{"REPORT_SUMMARY>MENU"}, transitions)
	assert.Equal(t, []domain.Outcome{domain.OutcomeNoOp, domain.OutcomeMoved, domain.OutcomeIllegalAction}, outcomes)
}
