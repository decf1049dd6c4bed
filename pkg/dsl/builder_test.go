package dsl

import (
	"testing"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/transition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New("HOME")

	b.Screen("HOME").
		Body("# Welcome").
		NoBack().
		Forward("MENU").Caption("Continue")

	b.Screen("MENU").
		Content("menu").
		Body("Pick a topic").
		ReturnBack("HOME").Caption("Back").
		AskQuestion("ASK").Caption("Ask").Row(1)

	b.Screen("ASK").
		Input().
		Body("Type your question").
		Back("MENU").
		FreeText("ANSWER")

	b.Screen("ANSWER").
		Answer().
		Body("{{.answer}}").
		Back("MENU")

	graph, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, domain.ScreenID("HOME"), graph.Table.Entry())
	assert.Equal(t, 4, graph.Registry.Len())

	home, err := graph.Registry.Get("HOME")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentRef("HOME"), home.Content, "content defaults to the screen ID")
	require.Len(t, home.Actions, 2)
	assert.True(t, home.Actions[0].IsNoOp())
	assert.Equal(t, "Continue", home.Actions[1].Caption)

	menu, err := graph.Registry.Get("MENU")
	require.NoError(t, err)
	back, ok := menu.Action(domain.ActionBack)
	require.True(t, ok)
	assert.True(t, back.Return)
	ask, _ := menu.Action(domain.ActionAskQuestion)
	assert.Equal(t, 1, ask.Row)

	assert.Equal(t, "Pick a topic", graph.Content["menu"])
	assert.Equal(t, "# Welcome", graph.Content["HOME"])

	res, err := graph.Table.Resolve("ASK", domain.ActionFreeText)
	require.NoError(t, err)
	assert.Equal(t, domain.ScreenID("ANSWER"), res.Target)
}

func TestBuilder_ScreenIsIdempotent(t *testing.T) {
	b := New("A")
	first := b.Screen("A")
	assert.Same(t, first, b.Screen("A"))
}

func TestBuilder_InvalidGraph(t *testing.T) {
	b := New("A")
	b.Screen("A").NoBack().Forward("MISSING")

	_, err := b.Build()
	require.Error(t, err)

	var verr *transition.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "MISSING")
}

func TestBuilder_ConflictingContent(t *testing.T) {
	b := New("A")
	b.Screen("A").Content("shared").Body("one").NoBack().Forward("B")
	b.Screen("B").Content("shared").Body("two").Back("A")

	_, err := b.Build()
	assert.ErrorContains(t, err, "different bodies")
}
