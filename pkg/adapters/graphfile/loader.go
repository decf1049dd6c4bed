// Package graphfile loads navigation graphs from YAML definition files.
package graphfile

import (
	"bytes"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/mygenetics/reportnav/internal/dto"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/dsl"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the graph file format version understood by Parse.
const SupportedVersion = 1

// Load reads and parses the graph file at path.
func Load(path string) (*dsl.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a YAML graph definition and validates it.
// Unknown keys are rejected so typos in action fields don't silently
// produce disabled buttons.
func Parse(data []byte) (*dsl.Graph, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	var file dto.GraphFile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &file,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid graph definition: %w", err)
	}

	return Build(file)
}

// Build compiles a decoded graph file into a validated graph.
func Build(file dto.GraphFile) (*dsl.Graph, error) {
	if file.Version != 0 && file.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported graph version %d", file.Version)
	}
	if file.Entry == "" {
		return nil, fmt.Errorf("graph definition has no entry screen")
	}

	b := dsl.New(domain.ScreenID(file.Entry))
	for _, sm := range file.Screens {
		if sm.ID == "" {
			return nil, fmt.Errorf("screen missing ID")
		}
		sb := b.Screen(domain.ScreenID(sm.ID)).Kind(domain.ScreenKind(sm.Kind))
		if sm.Content != "" {
			sb.Content(domain.ContentRef(sm.Content))
		}
		if sm.Body != "" {
			sb.Body(sm.Body)
		}
		for _, am := range sm.Actions {
			label := domain.ActionLabel(am.Label)
			if target := am.ResolvedTarget(); target != "" {
				sb.On(label, domain.ScreenID(target))
			} else {
				sb.Disabled(label)
			}
			if am.Return {
				sb.Returning()
			}
			sb.Caption(am.Caption).Row(am.Row)
		}
	}

	g, err := b.Build()
	if err != nil {
		return nil, err
	}

	for ref, body := range file.Content {
		if prev, dup := g.Content[domain.ContentRef(ref)]; dup && prev != body {
			return nil, fmt.Errorf("content %q declared with different bodies", ref)
		}
		g.Content[domain.ContentRef(ref)] = body
	}
	return g, nil
}

// Marshal encodes a graph back into the file format.
// Bodies are emitted in the shared content section.
func Marshal(g *dsl.Graph) ([]byte, error) {
	file := dto.GraphFile{
		Version: SupportedVersion,
		Entry:   string(g.Table.Entry()),
		Content: make(map[string]string, len(g.Content)),
	}
	for _, s := range g.Registry.Screens() {
		sm := dto.ScreenMetadata{
			ID:      string(s.ID),
			Kind:    string(s.Kind),
			Content: string(s.Content),
		}
		for _, a := range s.Actions {
			am := dto.ActionMetadata{
				Label:   string(a.Label),
				Caption: a.Caption,
				Return:  a.Return,
				Row:     a.Row,
			}
			if a.Target != nil {
				am.Target = string(*a.Target)
			}
			sm.Actions = append(sm.Actions, am)
		}
		file.Screens = append(file.Screens, sm)
	}
	for ref, body := range g.Content {
		file.Content[string(ref)] = body
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
