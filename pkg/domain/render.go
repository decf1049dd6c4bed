package domain

import (
	"fmt"
	"strings"
)

// Inbound is a user action decoded by the transport adapter.
type Inbound struct {
	UserID string      `json:"user_id"`
	Label  ActionLabel `json:"action"`

	// Text is the raw message text for free-text submissions.
	Text string `json:"text,omitempty"`

	// Origin is the screen the pressed button was rendered on. Optional.
	Origin ScreenID `json:"origin,omitempty"`
}

// IsText reports whether the inbound event is a free-text submission.
// Text sent alongside another action label does not count.
func (in Inbound) IsText() bool {
	return in.Label == ActionFreeText || (in.Label == "" && in.Text != "")
}

// Outcome classifies the result of an advance call.
type Outcome string

const (
	OutcomeMoved         Outcome = "moved"
	OutcomeNoOp          Outcome = "noop"
	OutcomeIllegalAction Outcome = "illegal_action"
	OutcomeEmptyInput    Outcome = "empty_input"
	OutcomeRateLimited   Outcome = "rate_limited"
	OutcomeFailed        Outcome = "failed"
)

// RenderInstruction describes the screen to present after an advance.
type RenderInstruction struct {
	Screen  ScreenID   `json:"screen"`
	Content ContentRef `json:"content"`
	Actions []Action   `json:"actions"`

	// Vars are template variables available to the content ({{.question}}, {{.answer}}).
	Vars map[string]string `json:"vars,omitempty"`
}

// Button is one outbound button.
type Button struct {
	Caption string      `json:"caption"`
	Action  ActionLabel `json:"action"`
	Data    string      `json:"data"`
	Row     int         `json:"row"`
}

// Payload is the transport-agnostic outbound message.
type Payload struct {
	Text    string   `json:"text"`
	Buttons []Button `json:"buttons"`
}

// callbackSeparator splits screen and label inside callback data.
const callbackSeparator = "|"

// EncodeCallback builds the callback data attached to a button.
// It carries the origin screen so stale presses can be detected.
func EncodeCallback(screen ScreenID, label ActionLabel) string {
	return string(screen) + callbackSeparator + string(label)
}

// DecodeCallback parses callback data produced by EncodeCallback.
// Data without a separator is treated as a bare label.
func DecodeCallback(data string) (ScreenID, ActionLabel, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return "", "", fmt.Errorf("empty callback data")
	}
	screen, label, found := strings.Cut(data, callbackSeparator)
	if !found {
		return "", ActionLabel(data), nil
	}
	if label == "" {
		return "", "", fmt.Errorf("callback data %q has no action", data)
	}
	return ScreenID(screen), ActionLabel(label), nil
}
