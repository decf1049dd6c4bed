package dto

// GraphFile is the on-disk representation of a navigation graph.
// It uses "mapstructure" tags so YAML, JSON and env-expanded maps decode alike.
type GraphFile struct {
	Version int              `json:"version" yaml:"version,omitempty" mapstructure:"version"`
	Entry   string           `json:"entry" yaml:"entry" mapstructure:"entry"`
	Screens []ScreenMetadata `json:"screens" yaml:"screens" mapstructure:"screens"`

	// Content holds bodies for references shared by several screens.
	Content map[string]string `json:"content" yaml:"content,omitempty" mapstructure:"content"`
}

// ScreenMetadata is one screen entry of a graph file.
type ScreenMetadata struct {
	ID      string           `json:"id" yaml:"id" mapstructure:"id"`
	Kind    string           `json:"kind" yaml:"kind,omitempty" mapstructure:"kind"`
	Content string           `json:"content" yaml:"content,omitempty" mapstructure:"content"`
	Body    string           `json:"body" yaml:"body,omitempty" mapstructure:"body"`
	Actions []ActionMetadata `json:"actions" yaml:"actions,omitempty" mapstructure:"actions"`
}

// ActionMetadata is one advertised action. A missing target declares a disabled action.
type ActionMetadata struct {
	Label   string `json:"label" yaml:"label" mapstructure:"label"`
	Caption string `json:"caption" yaml:"caption,omitempty" mapstructure:"caption"`
	Target  string `json:"target" yaml:"target,omitempty" mapstructure:"target"`
	To      string `json:"to" yaml:"to,omitempty" mapstructure:"to"`
	Return  bool   `json:"return" yaml:"return,omitempty" mapstructure:"return"`
	Row     int    `json:"row" yaml:"row,omitempty" mapstructure:"row"`
}

// ResolvedTarget returns the target, accepting "to" as a shorthand.
func (a ActionMetadata) ResolvedTarget() string {
	if a.Target != "" {
		return a.Target
	}
	return a.To
}
