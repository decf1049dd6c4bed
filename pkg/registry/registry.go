// Package registry holds the immutable screen registry of a navigation graph.
package registry

import (
	"fmt"
	"sort"

	"github.com/mygenetics/reportnav/pkg/domain"
)

// Registry maps screen IDs to screen definitions.
// It is populated once by New and is read-only afterwards, so it is safe for
// concurrent use without locking.
type Registry struct {
	screens map[domain.ScreenID]domain.Screen
	order   []domain.ScreenID
}

// New creates a registry from the given screens.
// It fails on empty IDs, unknown kinds and duplicates.
func New(screens ...domain.Screen) (*Registry, error) {
	r := &Registry{
		screens: make(map[domain.ScreenID]domain.Screen, len(screens)),
		order:   make([]domain.ScreenID, 0, len(screens)),
	}
	for _, s := range screens {
		if s.ID == "" {
			return nil, fmt.Errorf("screen missing ID")
		}
		if !s.Kind.Valid() {
			return nil, fmt.Errorf("screen %s has unknown kind %q", s.ID, s.Kind)
		}
		if _, exists := r.screens[s.ID]; exists {
			return nil, fmt.Errorf("duplicate screen: %s", s.ID)
		}
		r.screens[s.ID] = s.Clone()
		r.order = append(r.order, s.ID)
	}
	return r, nil
}

// Get looks up a screen by ID.
// Returns an error wrapping domain.ErrUnknownScreen if it is not registered.
func (r *Registry) Get(id domain.ScreenID) (domain.Screen, error) {
	s, ok := r.screens[id]
	if !ok {
		return domain.Screen{}, fmt.Errorf("%w: %s", domain.ErrUnknownScreen, id)
	}
	return s.Clone(), nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id domain.ScreenID) bool {
	_, ok := r.screens[id]
	return ok
}

// Len returns the number of registered screens.
func (r *Registry) Len() int {
	return len(r.screens)
}

// IDs returns the registered screen IDs in sorted order.
func (r *Registry) IDs() []domain.ScreenID {
	ids := make([]domain.ScreenID, 0, len(r.screens))
	for id := range r.screens {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Screens returns copies of all screens in registration order.
func (r *Registry) Screens() []domain.Screen {
	out := make([]domain.Screen, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.screens[id].Clone())
	}
	return out
}
