// Package transition implements the transition table of a navigation graph:
// the (screen, action label) -> screen mapping and its build-time validation.
package transition

import (
	"fmt"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/registry"
)

// IllegalActionError is returned by Resolve when the label is not advertised
// by the screen. It matches domain.ErrIllegalAction with errors.Is.
type IllegalActionError struct {
	Screen domain.ScreenID
	Label  domain.ActionLabel
	Reason string
}

func (e *IllegalActionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("action %q is not available on screen %s: %s", e.Label, e.Screen, e.Reason)
	}
	return fmt.Sprintf("action %q is not available on screen %s", e.Label, e.Screen)
}

func (e *IllegalActionError) Unwrap() error {
	return domain.ErrIllegalAction
}

// Resolution is the outcome of resolving an advertised action.
type Resolution struct {
	// Target is the next screen. Empty when NoOp is set.
	Target domain.ScreenID
	// NoOp marks an intentionally disabled action.
	NoOp bool
	// Return marks a history-aware action; Target is its fallback.
	Return bool
}

type key struct {
	from  domain.ScreenID
	label domain.ActionLabel
}

// Edge is one row of the table, used for introspection.
type Edge struct {
	From   domain.ScreenID    `json:"from"`
	Label  domain.ActionLabel `json:"label"`
	To     domain.ScreenID    `json:"to,omitempty"`
	NoOp   bool               `json:"noop,omitempty"`
	Return bool               `json:"return,omitempty"`
}

// Table is the immutable transition table of a graph.
type Table struct {
	reg   *registry.Registry
	entry domain.ScreenID
	rows  map[key]domain.Action
	edges []Edge

	// duplicates records labels advertised twice on the same screen.
	duplicates []key
}

// New derives the table from the screens' advertised actions and validates it.
// Any validation failure is returned as a *ValidationError and must stop startup.
func New(reg *registry.Registry, entry domain.ScreenID) (*Table, error) {
	if reg == nil {
		return nil, fmt.Errorf("transition table requires a registry")
	}
	t := &Table{
		reg:   reg,
		entry: entry,
		rows:  make(map[key]domain.Action),
	}
	for _, s := range reg.Screens() {
		for _, a := range s.Actions {
			if selfBack(s.ID, a) {
				a.Target = nil
			}
			k := key{from: s.ID, label: a.Label}
			if _, exists := t.rows[k]; exists {
				t.duplicates = append(t.duplicates, k)
				continue
			}
			t.rows[k] = a
			e := Edge{From: s.ID, Label: a.Label, NoOp: a.IsNoOp(), Return: a.Return}
			if !a.IsNoOp() {
				e.To = *a.Target
			}
			t.edges = append(t.edges, e)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// selfBack reports whether a is a Back action pointing at its own screen.
// Such an action is the legacy encoding of a disabled Back and resolves as NoOp.
func selfBack(from domain.ScreenID, a domain.Action) bool {
	return a.Label.IsBack() && !a.IsNoOp() && *a.Target == from
}

// Resolve maps (from, label) to the next screen.
//
// It returns an error wrapping domain.ErrUnknownScreen when from is not
// registered and an *IllegalActionError when the label is not advertised.
// Disabled actions resolve to a NoOp resolution, which is not an error.
func (t *Table) Resolve(from domain.ScreenID, label domain.ActionLabel) (Resolution, error) {
	if !t.reg.Has(from) {
		return Resolution{}, fmt.Errorf("%w: %s", domain.ErrUnknownScreen, from)
	}
	a, ok := t.rows[key{from: from, label: label}]
	if !ok {
		return Resolution{}, &IllegalActionError{Screen: from, Label: label}
	}
	if a.IsNoOp() {
		return Resolution{NoOp: true, Return: a.Return}, nil
	}
	return Resolution{Target: *a.Target, Return: a.Return}, nil
}

// Entry returns the entry screen ID.
func (t *Table) Entry() domain.ScreenID {
	return t.entry
}

// Registry returns the screen registry backing the table.
func (t *Table) Registry() *registry.Registry {
	return t.reg
}

// Screen is a shortcut for Registry().Get.
func (t *Table) Screen(id domain.ScreenID) (domain.Screen, error) {
	return t.reg.Get(id)
}

// Edges returns every table row in registration order.
func (t *Table) Edges() []Edge {
	return append([]Edge(nil), t.edges...)
}
