package domain

import "time"

// Session represents the per-user navigation pointer.
type Session struct {
	UserID string   `json:"user_id"`
	Screen ScreenID `json:"screen"`

	// AwaitingText is set while the user is on a free-text input screen.
	AwaitingText bool `json:"awaiting_text,omitempty"`

	// Question holds the last captured free-text question.
	Question string `json:"question,omitempty"`

	// History is the breadcrumb of screens left through non-return actions.
	History []ScreenID `json:"history,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted session when a store encrypts at rest.
	// Only the envelope written to the backend sets it.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSession creates a fresh session positioned at the entry screen.
func NewSession(userID string, entry ScreenID, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		Screen:    entry,
		UpdatedAt: now,
	}
}

// Snapshot returns a deep copy of the session.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.History != nil {
		out.History = append([]ScreenID(nil), s.History...)
	}
	if s.Sealed != nil {
		out.Sealed = append([]byte(nil), s.Sealed...)
	}
	return &out
}
