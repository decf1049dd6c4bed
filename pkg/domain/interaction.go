package domain

import "time"

// Interaction is one handled exchange, kept as an audit trail.
type Interaction struct {
	UserID   string      `json:"user_id"`
	From     ScreenID    `json:"from"`
	Screen   ScreenID    `json:"screen"`
	Action   ActionLabel `json:"action"`
	Outcome  Outcome     `json:"outcome"`
	Question string      `json:"question,omitempty"`
	Answer   string      `json:"answer,omitempty"`
	At       time.Time   `json:"at"`
}
