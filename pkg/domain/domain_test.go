package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInbound_IsText(t *testing.T) {
	assert.True(t, domain.Inbound{Label: domain.ActionFreeText}.IsText())
	assert.True(t, domain.Inbound{Text: "hello"}.IsText())
	assert.False(t, domain.Inbound{Label: domain.ActionBack, Text: "hello"}.IsText())
	assert.False(t, domain.Inbound{Label: domain.ActionBack}.IsText())
}

func TestCallbackData(t *testing.T) {
	data := domain.EncodeCallback("SHOW_DETOX_SUMMARY", domain.ActionMoreDetails)
	assert.Equal(t, "SHOW_DETOX_SUMMARY|more_details", data)

	screen, label, err := domain.DecodeCallback(data)
	require.NoError(t, err)
	assert.Equal(t, domain.ScreenID("SHOW_DETOX_SUMMARY"), screen)
	assert.Equal(t, domain.ActionMoreDetails, label)

	t.Run("Bare label", func(t *testing.T) {
		screen, label, err := domain.DecodeCallback("forward")
		require.NoError(t, err)
		assert.Empty(t, screen)
		assert.Equal(t, domain.ActionForward, label)
	})

	t.Run("Open label keeps its colon", func(t *testing.T) {
		_, label, err := domain.DecodeCallback(domain.EncodeCallback("MENU", domain.Open("lipid")))
		require.NoError(t, err)
		section, ok := label.Section()
		assert.True(t, ok)
		assert.Equal(t, "lipid", section)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, _, err := domain.DecodeCallback("   ")
		assert.Error(t, err)
		_, _, err = domain.DecodeCallback("MENU|")
		assert.Error(t, err)
	})
}

func TestActionLabel_Section(t *testing.T) {
	_, ok := domain.ActionForward.Section()
	assert.False(t, ok)
	_, ok = domain.ActionLabel("open:").Section()
	assert.False(t, ok)
}

func TestScreen_CloneIsolation(t *testing.T) {
	s := domain.Screen{
		ID: "A",
		Actions: []domain.Action{
			{Label: domain.ActionForward, Target: domain.To("B")},
		},
	}
	c := s.Clone()
	*c.Actions[0].Target = "Z"
	c.Actions[0].Caption = "changed"

	assert.Equal(t, domain.ScreenID("B"), *s.Actions[0].Target)
	assert.Empty(t, s.Actions[0].Caption)
	assert.Equal(t, domain.KindContent, s.EffectiveKind())
}

func TestSession_Snapshot(t *testing.T) {
	s := domain.NewSession("u1", "START", time.Unix(0, 0))
	s.History = []domain.ScreenID{"A"}

	snap := s.Snapshot()
	snap.History[0] = "B"
	snap.Screen = "OTHER"

	assert.Equal(t, domain.ScreenID("A"), s.History[0])
	assert.Equal(t, domain.ScreenID("START"), s.Screen)
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnOutcome: func(context.Context, *domain.OutcomeEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnOutcome:    func(context.Context, *domain.OutcomeEvent) { calls = append(calls, "b") },
		OnTransition: func(context.Context, *domain.TransitionEvent) { calls = append(calls, "t") },
	}

	merged := a.Merge(b)
	merged.OnOutcome(context.Background(), &domain.OutcomeEvent{})
	merged.OnTransition(context.Background(), &domain.TransitionEvent{})

	assert.Equal(t, []string{"a", "b", "t"}, calls)
	assert.Nil(t, merged.OnRenderFailure)
}
