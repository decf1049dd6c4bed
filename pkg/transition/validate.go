package transition

import (
	"fmt"
	"strings"

	"github.com/mygenetics/reportnav/pkg/domain"
)

// ValidationError lists every problem found in a graph.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("found %d errors:\n- %s", len(e.Problems), strings.Join(e.Problems, "\n- "))
}

// Validate checks the table for broken links, unreachable screens and
// entry-screen violations. Back edges (including history-aware returns) are
// allowed to form cycles and do not count as normal navigation.
func (t *Table) Validate() error {
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, k := range t.duplicates {
		report("Screen '%s' advertises action '%s' more than once", k.from, k.label)
	}

	if !t.reg.Has(t.entry) {
		report("Entry screen '%s' is not registered", t.entry)
		return &ValidationError{Problems: problems}
	}

	inDegree := make(map[domain.ScreenID]int)
	for _, s := range t.reg.Screens() {
		kind := s.EffectiveKind()
		hasFreeText := false

		for _, a := range s.Actions {
			if a.Label == "" {
				report("Screen '%s' has an action without a label", s.ID)
				continue
			}
			if a.Label == domain.ActionFreeText {
				hasFreeText = true
				if kind != domain.KindInput {
					report("Screen '%s' accepts free text but is not an input screen", s.ID)
				}
				if a.IsNoOp() {
					report("Input screen '%s' has no free-text target", s.ID)
				}
			}
			if a.IsNoOp() || selfBack(s.ID, a) {
				continue
			}
			if !t.reg.Has(*a.Target) {
				report("Screen '%s' action '%s' targets missing screen '%s'", s.ID, a.Label, *a.Target)
				continue
			}
			if !a.Label.IsBack() && !a.Return {
				inDegree[*a.Target]++
			}
		}

		if kind == domain.KindInput && !hasFreeText {
			report("Input screen '%s' does not advertise '%s'", s.ID, domain.ActionFreeText)
		}
	}

	entry, _ := t.reg.Get(t.entry)
	if back, ok := entry.Action(domain.ActionBack); ok && !back.IsNoOp() && !selfBack(t.entry, back) {
		report("Entry screen '%s' must not have a Back target (found '%s')", t.entry, *back.Target)
	}
	if entry.EffectiveKind() == domain.KindInput {
		report("Entry screen '%s' cannot be an input screen", t.entry)
	}
	if inDegree[t.entry] > 0 {
		report("Entry screen '%s' is the target of %d forward transitions", t.entry, inDegree[t.entry])
	}

	for _, id := range t.reg.IDs() {
		if id != t.entry && inDegree[id] == 0 {
			report("Screen '%s' is only reachable through Back (second entry point)", id)
		}
	}

	// Crawl from the entry over every enabled edge.
	visited := map[domain.ScreenID]bool{t.entry: true}
	queue := []domain.ScreenID{t.entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		s, err := t.reg.Get(current)
		if err != nil {
			continue
		}
		for _, a := range s.Actions {
			if a.IsNoOp() || visited[*a.Target] || !t.reg.Has(*a.Target) {
				continue
			}
			visited[*a.Target] = true
			queue = append(queue, *a.Target)
		}
	}
	for _, id := range t.reg.IDs() {
		if !visited[id] {
			report("Screen '%s' is unreachable from entry '%s'", id, t.entry)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
