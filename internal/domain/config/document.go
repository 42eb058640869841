// Package config reads visualisation documents and applies them to a state.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SupportedMajor is the document schema major version this build reads.
const SupportedMajor = "v1"

// Default surface size used when a document omits width or height.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Document is a visualisation document.
type Document struct {
	Version   string     `yaml:"version,omitempty"`
	Locale    string     `yaml:"locale,omitempty"`
	Type      string     `yaml:"type"`
	Container string     `yaml:"container,omitempty"`
	Width     float64    `yaml:"width,omitempty"`
	Height    float64    `yaml:"height,omitempty"`
	Margin    MarginSpec `yaml:"margin,omitempty"`
	Title     TitleSpec  `yaml:"title,omitempty"`
	ID        string     `yaml:"id,omitempty"`
	Nesting   []string   `yaml:"nesting,omitempty"`
	Color     ColorSpec  `yaml:"color,omitempty"`
	Time      TimeSpec   `yaml:"time,omitempty"`
	Depth     int        `yaml:"depth,omitempty"`
	Focus     string     `yaml:"focus,omitempty"`
	Axes      AxesSpec   `yaml:"axes,omitempty"`
	Data      SourceSpec `yaml:"data,omitempty"`
	Attrs     SourceSpec `yaml:"attrs,omitempty"`
	Coords    SourceSpec `yaml:"coords,omitempty"`
	Nodes     SourceSpec `yaml:"nodes,omitempty"`
	Edges     EdgeSpec   `yaml:"edges,omitempty"`
	Legend    bool       `yaml:"legend,omitempty"`
	Timeline  bool       `yaml:"timeline,omitempty"`
	Dev       bool       `yaml:"dev,omitempty"`

	// Draw set to false requests a layout-only pass: data steps and shape
	// drawing are skipped and the last frame is kept. The first
	// reconciliation of a state always draws.
	Draw *bool `yaml:"draw,omitempty"`

	// baseDir resolves relative source paths; set by Load.
	baseDir string
}

// MarginSpec holds the configured margins.
type MarginSpec struct {
	Top    float64 `yaml:"top,omitempty"`
	Right  float64 `yaml:"right,omitempty"`
	Bottom float64 `yaml:"bottom,omitempty"`
	Left   float64 `yaml:"left,omitempty"`
}

// TitleSpec holds the chart titles.
type TitleSpec struct {
	Text string `yaml:"text,omitempty"`
	Sub  string `yaml:"sub,omitempty"`
}

// AxesSpec names the plotted keys.
type AxesSpec struct {
	X string `yaml:"x,omitempty"`
	Y string `yaml:"y,omitempty"`
}

// TimeSpec configures the time field and its selection.
type TimeSpec struct {
	Key      string   `yaml:"key,omitempty"`
	Fixed    bool     `yaml:"fixed,omitempty"`
	Selected []string `yaml:"selected,omitempty"`
	Solo     []string `yaml:"solo,omitempty"`
	Mute     []string `yaml:"mute,omitempty"`
}

// SourceSpec is a channel source: either a URL or inline rows.
type SourceSpec struct {
	URL  string           `yaml:"url,omitempty"`
	Rows []map[string]any `yaml:"rows,omitempty"`
}

// IsZero reports whether the source is absent.
func (s SourceSpec) IsZero() bool {
	return s.URL == "" && s.Rows == nil
}

// EdgeSpec is the edge source plus its endpoint keys.
type EdgeSpec struct {
	SourceSpec `yaml:",inline"`
	Source     string `yaml:"source,omitempty"`
	Target     string `yaml:"target,omitempty"`
}

// ColorEntry maps an id key to a colour key.
type ColorEntry struct {
	ID  string
	Key string
}

// ColorSpec is either a plain key or an ordered id-key to colour-key
// mapping.
//
//	color: size
//	color:
//	  id: size
//	  group: weight
type ColorSpec struct {
	Key     string
	Mapping []ColorEntry
}

// IsZero reports whether no colour encoding is configured.
func (c ColorSpec) IsZero() bool {
	return c.Key == "" && len(c.Mapping) == 0
}

// UnmarshalYAML decodes a scalar key or a mapping, keeping the mapping's
// declaration order.
func (c *ColorSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&c.Key)
	case yaml.MappingNode:
		c.Mapping = make([]ColorEntry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: color mapping values must be keys", v.Line)
			}
			c.Mapping = append(c.Mapping, ColorEntry{ID: k.Value, Key: v.Value})
		}
		return nil
	default:
		return fmt.Errorf("line %d: color must be a key or a mapping", node.Line)
	}
}

// MarshalYAML encodes the spec in the form it was declared.
func (c ColorSpec) MarshalYAML() (interface{}, error) {
	if len(c.Mapping) == 0 {
		return c.Key, nil
	}
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range c.Mapping {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.ID},
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Key})
	}
	return node, nil
}
