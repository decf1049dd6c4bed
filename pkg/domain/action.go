package domain

import "strings"

// ActionLabel names a user-initiated event.
type ActionLabel string

// Well-known action labels.
const (
	ActionBack        ActionLabel = "back"
	ActionForward     ActionLabel = "forward"
	ActionMoreDetails ActionLabel = "more_details"
	ActionConfirm     ActionLabel = "confirm"
	ActionAskQuestion ActionLabel = "ask_question"

	// ActionFreeText is the label carried by arbitrary text messages.
	ActionFreeText ActionLabel = "free_text"
)

// openPrefix marks menu entries that open a section.
const openPrefix = "open:"

// Open returns the label of the menu entry opening the given section.
func Open(section string) ActionLabel {
	return ActionLabel(openPrefix + section)
}

// Section returns the section opened by the label, if it is an open label.
func (l ActionLabel) Section() (string, bool) {
	s := string(l)
	if !strings.HasPrefix(s, openPrefix) || len(s) == len(openPrefix) {
		return "", false
	}
	return s[len(openPrefix):], true
}

// IsBack reports whether the label is the Back label.
func (l ActionLabel) IsBack() bool {
	return l == ActionBack
}

// Action is an advertised transition out of a screen.
type Action struct {
	Label ActionLabel `json:"label" yaml:"label"`

	// Caption is the button text shown to the user.
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// Target is the next screen. Nil means the action is a recognized no-op
	// (e.g. a disabled Back on the entry screen).
	Target *ScreenID `json:"target,omitempty" yaml:"target,omitempty"`

	// Return makes the action history-aware: it goes back to the previously
	// visited content screen and only uses Target when there is no history.
	Return bool `json:"return,omitempty" yaml:"return,omitempty"`

	// Row is the keyboard row the button is laid out on.
	Row int `json:"row,omitempty" yaml:"row,omitempty"`
}

// IsNoOp reports whether the action is intentionally disabled.
func (a Action) IsNoOp() bool {
	return a.Target == nil
}

// Clone returns a copy that does not share the target pointer.
func (a Action) Clone() Action {
	out := a
	if a.Target != nil {
		t := *a.Target
		out.Target = &t
	}
	return out
}

// To is a helper to build an action target.
func To(id ScreenID) *ScreenID {
	return &id
}
