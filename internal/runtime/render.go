package runtime

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/ports"
)

// Interpolator renders variables into a content body.
type Interpolator func(ctx context.Context, text string, vars map[string]string) (string, error)

// DefaultInterpolator uses text/template. Missing variables render empty.
func DefaultInterpolator(_ context.Context, text string, vars map[string]string) (string, error) {
	tmpl, err := template.New("content").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DefaultCaptions are used for actions declared without a caption.
var DefaultCaptions = map[domain.ActionLabel]string{
	domain.ActionBack:        "Back",
	domain.ActionForward:     "Forward",
	domain.ActionMoreDetails: "More details",
	domain.ActionConfirm:     "Confirm",
	domain.ActionAskQuestion: "Ask a question",
}

// Dispatcher turns render instructions into transport-agnostic payloads.
type Dispatcher struct {
	content      ports.ContentResolver
	interpolator Interpolator
}

// DispatcherOption configures the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithInterpolator sets a custom interpolator.
func WithInterpolator(interp Interpolator) DispatcherOption {
	return func(d *Dispatcher) {
		d.interpolator = interp
	}
}

// NewDispatcher creates a dispatcher resolving content through resolver.
func NewDispatcher(resolver ports.ContentResolver, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		content:      resolver,
		interpolator: DefaultInterpolator,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Render resolves the instruction's content and lays out its buttons.
// Content lookup failures are returned wrapping domain.ErrContentUnavailable.
func (d *Dispatcher) Render(ctx context.Context, instr domain.RenderInstruction) (domain.Payload, error) {
	body, err := d.content.Resolve(ctx, instr.Content)
	if err != nil {
		return domain.Payload{}, fmt.Errorf("screen %s: %w", instr.Screen, wrapUnavailable(instr.Content, err))
	}

	text := body
	if d.interpolator != nil && strings.Contains(body, "{{") {
		text, err = d.interpolator(ctx, body, instr.Vars)
		if err != nil {
			return domain.Payload{}, fmt.Errorf("rendering failed during interpolation of %s: %w", instr.Content, err)
		}
	}

	return domain.Payload{Text: text, Buttons: d.Buttons(instr)}, nil
}

// Fallback builds a payload with the given text and the screen's usual buttons.
func (d *Dispatcher) Fallback(instr domain.RenderInstruction, text string) domain.Payload {
	return domain.Payload{Text: text, Buttons: d.Buttons(instr)}
}

// Buttons lays out the advertised actions in order.
// Free text is typed, not pressed, so it never becomes a button.
func (d *Dispatcher) Buttons(instr domain.RenderInstruction) []domain.Button {
	buttons := make([]domain.Button, 0, len(instr.Actions))
	for _, a := range instr.Actions {
		if a.Label == domain.ActionFreeText {
			continue
		}
		buttons = append(buttons, domain.Button{
			Caption: caption(a),
			Action:  a.Label,
			Data:    domain.EncodeCallback(instr.Screen, a.Label),
			Row:     a.Row,
		})
	}
	return buttons
}

func caption(a domain.Action) string {
	if a.Caption != "" {
		return a.Caption
	}
	if c, ok := DefaultCaptions[a.Label]; ok {
		return c
	}
	if section, ok := a.Label.Section(); ok {
		r, size := utf8.DecodeRuneInString(section)
		return string(unicode.ToUpper(r)) + section[size:]
	}
	return string(a.Label)
}

type unavailableError struct {
	ref domain.ContentRef
	err error
}

func (e *unavailableError) Error() string {
	return fmt.Sprintf("content %q unavailable: %v", e.ref, e.err)
}

func (e *unavailableError) Is(target error) bool {
	return target == domain.ErrContentUnavailable
}

func (e *unavailableError) Unwrap() error {
	return e.err
}

func wrapUnavailable(ref domain.ContentRef, err error) error {
	return &unavailableError{ref: ref, err: err}
}
