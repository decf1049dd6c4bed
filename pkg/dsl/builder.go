package dsl

import (
	"fmt"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/registry"
	"github.com/mygenetics/reportnav/pkg/transition"
)

// Graph is a validated navigation graph together with its inline content.
type Graph struct {
	Registry *registry.Registry
	Table    *transition.Table

	// Content maps content references to Markdown bodies declared with Body.
	Content map[domain.ContentRef]string
}

// Builder manages the graph construction.
type Builder struct {
	entry   domain.ScreenID
	screens map[domain.ScreenID]*ScreenBuilder
	order   []domain.ScreenID
}

// New creates a new graph builder whose entry screen is entry.
func New(entry domain.ScreenID) *Builder {
	return &Builder{
		entry:   entry,
		screens: make(map[domain.ScreenID]*ScreenBuilder),
	}
}

// Screen returns the builder for the screen with the given ID.
// If the screen already exists, it returns the existing builder.
func (b *Builder) Screen(id domain.ScreenID) *ScreenBuilder {
	if sb, ok := b.screens[id]; ok {
		return sb
	}
	sb := &ScreenBuilder{
		screen: domain.Screen{ID: id},
	}
	b.screens[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build compiles the screens into a registry and a validated transition table.
func (b *Builder) Build() (*Graph, error) {
	screens := make([]domain.Screen, 0, len(b.order))
	content := make(map[domain.ContentRef]string)

	for _, id := range b.order {
		sb := b.screens[id]
		s := sb.Build()
		screens = append(screens, s)
		if sb.hasBody {
			if prev, dup := content[s.Content]; dup && prev != sb.body {
				return nil, fmt.Errorf("content %q declared with different bodies", s.Content)
			}
			content[s.Content] = sb.body
		}
	}

	reg, err := registry.New(screens...)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	table, err := transition.New(reg, b.entry)
	if err != nil {
		return nil, err
	}

	return &Graph{Registry: reg, Table: table, Content: content}, nil
}
