package graph

import (
	"fmt"
	"strings"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/transition"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedScreens []domain.ScreenID
	CurrentScreen  domain.ScreenID
}

// OverlayFor builds an overlay from a session's breadcrumb and pointer.
func OverlayFor(s *domain.Session) *GraphOverlay {
	if s == nil {
		return nil
	}
	return &GraphOverlay{VisitedScreens: s.History, CurrentScreen: s.Screen}
}

// GenerateMermaid produces a Mermaid flowchart from a transition table.
// It applies semantic styling:
// - Entry: ((Circle))
// - Input: [/Parallelogram/]
// - Answer: ([Stadium])
// - Default: [Rectangle]
// Back and history-aware actions are drawn dotted; disabled actions are omitted.
func GenerateMermaid(table *transition.Table, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, screen := range table.Registry().Screens() {
		safeID := sanitizeMermaidID(string(screen.ID))

		opener, closer := "[", "]"
		switch {
		case screen.ID == table.Entry():
			opener, closer = "((", "))"
		case screen.EffectiveKind() == domain.KindInput:
			opener, closer = "[/", "/]"
		case screen.EffectiveKind() == domain.KindAnswer:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, screen.ID, closer)
	}

	for _, e := range table.Edges() {
		if e.NoOp {
			continue
		}
		label := strings.ReplaceAll(string(e.Label), "\"", "'")
		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if e.Label.IsBack() || e.Return {
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(string(e.From)), arrow, sanitizeMermaidID(string(e.To)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedScreens {
			safeID := sanitizeMermaidID(string(id))
			if safeID == "" || seen[safeID] || !table.Registry().Has(id) {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.CurrentScreen != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(string(overlay.CurrentScreen)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "_", " ", "_").Replace(id)
}
