package domain

// ScreenID identifies a screen. IDs are stable and unique within a graph.
type ScreenID string

// ContentRef is an opaque reference resolved by a ContentResolver.
type ContentRef string

// ScreenKind defines how the engine treats a screen.
type ScreenKind string

const (
	// KindContent displays content and waits for a button press.
	KindContent ScreenKind = "content"
	// KindInput captures arbitrary text from the user (awaiting free text).
	KindInput ScreenKind = "input"
	// KindAnswer displays the answer to a captured question.
	KindAnswer ScreenKind = "answer"
)

// Valid reports whether k is a known kind. The empty kind is treated as KindContent.
func (k ScreenKind) Valid() bool {
	switch k {
	case "", KindContent, KindInput, KindAnswer:
		return true
	}
	return false
}

// Screen is one navigable unit of content.
// Screens are immutable once loaded into a registry.
type Screen struct {
	ID      ScreenID   `json:"id" yaml:"id"`
	Kind    ScreenKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Content ContentRef `json:"content" yaml:"content"`

	// Actions is the ordered list of actions advertised by the screen.
	Actions []Action `json:"actions" yaml:"actions"`
}

// EffectiveKind returns the screen kind, defaulting to KindContent.
func (s Screen) EffectiveKind() ScreenKind {
	if s.Kind == "" {
		return KindContent
	}
	return s.Kind
}

// Action returns the advertised action with the given label.
func (s Screen) Action(label ActionLabel) (Action, bool) {
	for _, a := range s.Actions {
		if a.Label == label {
			return a, true
		}
	}
	return Action{}, false
}

// Clone returns a deep copy so callers can't mutate registry-owned slices.
func (s Screen) Clone() Screen {
	out := s
	if s.Actions != nil {
		out.Actions = make([]Action, len(s.Actions))
		for i, a := range s.Actions {
			out.Actions[i] = a.Clone()
		}
	}
	return out
}
