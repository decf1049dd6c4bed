package dsl

import "github.com/mygenetics/reportnav/pkg/domain"

// ScreenBuilder provides a fluent API for configuring a screen.
type ScreenBuilder struct {
	screen  domain.Screen
	body    string
	hasBody bool
}

// Content sets the content reference of the screen.
// Screens default to their own ID as reference.
func (s *ScreenBuilder) Content(ref domain.ContentRef) *ScreenBuilder {
	s.screen.Content = ref
	return s
}

// Body declares the Markdown body behind the screen's content reference.
func (s *ScreenBuilder) Body(markdown string) *ScreenBuilder {
	s.body = markdown
	s.hasBody = true
	return s
}

// Kind sets the screen kind.
func (s *ScreenBuilder) Kind(k domain.ScreenKind) *ScreenBuilder {
	s.screen.Kind = k
	return s
}

// Input marks the screen as a free-text capture screen.
func (s *ScreenBuilder) Input() *ScreenBuilder {
	s.screen.Kind = domain.KindInput
	return s
}

// Answer marks the screen as a question-answer display.
func (s *ScreenBuilder) Answer() *ScreenBuilder {
	s.screen.Kind = domain.KindAnswer
	return s
}

// On adds an action with the given label leading to target.
func (s *ScreenBuilder) On(label domain.ActionLabel, target domain.ScreenID) *ScreenBuilder {
	s.screen.Actions = append(s.screen.Actions, domain.Action{
		Label:  label,
		Target: domain.To(target),
	})
	return s
}

// Disabled adds an advertised action that resolves to a no-op.
func (s *ScreenBuilder) Disabled(label domain.ActionLabel) *ScreenBuilder {
	s.screen.Actions = append(s.screen.Actions, domain.Action{Label: label})
	return s
}

// Back adds a static Back action.
func (s *ScreenBuilder) Back(target domain.ScreenID) *ScreenBuilder {
	return s.On(domain.ActionBack, target)
}

// ReturnBack adds a history-aware Back action. fallback is used when the
// session has no breadcrumb to return to.
func (s *ScreenBuilder) ReturnBack(fallback domain.ScreenID) *ScreenBuilder {
	return s.On(domain.ActionBack, fallback).Returning()
}

// NoBack adds a disabled Back action (entry screens).
func (s *ScreenBuilder) NoBack() *ScreenBuilder {
	return s.Disabled(domain.ActionBack)
}

// Forward adds a Forward action.
func (s *ScreenBuilder) Forward(target domain.ScreenID) *ScreenBuilder {
	return s.On(domain.ActionForward, target)
}

// MoreDetails adds a More details action.
func (s *ScreenBuilder) MoreDetails(target domain.ScreenID) *ScreenBuilder {
	return s.On(domain.ActionMoreDetails, target)
}

// Confirm adds a Confirm action.
func (s *ScreenBuilder) Confirm(target domain.ScreenID) *ScreenBuilder {
	return s.On(domain.ActionConfirm, target)
}

// AskQuestion adds an Ask question action.
func (s *ScreenBuilder) AskQuestion(target domain.ScreenID) *ScreenBuilder {
	return s.On(domain.ActionAskQuestion, target)
}

// FreeText routes submitted text to target. Only valid on input screens.
func (s *ScreenBuilder) FreeText(target domain.ScreenID) *ScreenBuilder {
	return s.On(domain.ActionFreeText, target)
}

// Open adds a menu entry opening section.
func (s *ScreenBuilder) Open(section string, target domain.ScreenID) *ScreenBuilder {
	return s.On(domain.Open(section), target)
}

// Returning makes the most recently added action history-aware.
func (s *ScreenBuilder) Returning() *ScreenBuilder {
	if a := s.last(); a != nil {
		a.Return = true
	}
	return s
}

// Caption sets the button text of the most recently added action.
func (s *ScreenBuilder) Caption(text string) *ScreenBuilder {
	if a := s.last(); a != nil {
		a.Caption = text
	}
	return s
}

// Row places the most recently added action on keyboard row n.
func (s *ScreenBuilder) Row(n int) *ScreenBuilder {
	if a := s.last(); a != nil {
		a.Row = n
	}
	return s
}

func (s *ScreenBuilder) last() *domain.Action {
	if len(s.screen.Actions) == 0 {
		return nil
	}
	return &s.screen.Actions[len(s.screen.Actions)-1]
}

// Build returns the underlying domain.Screen.
// This is primarily used by the Builder, but exposed for advanced usage.
func (s *ScreenBuilder) Build() domain.Screen {
	out := s.screen.Clone()
	if out.Content == "" {
		out.Content = domain.ContentRef(out.ID)
	}
	return out
}
