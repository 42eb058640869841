// Package state holds the visualisation state shared by the planner, the
// executor and every collaborator.
//
// Each field group is its own sub-record. Fields that take part in
// reconciliation carry a Changed flag, set by the caller (usually through the
// Set* methods in diff.go) before a plan is built and cleared with
// ClearChanged once a cycle has executed successfully. The planner only reads
// the flags; it never clears them.
package state

import "github.com/felixgeelhaar/redraw/internal/domain/locale"

// Flag is a boolean setting with a changed marker.
type Flag struct {
	Value   bool
	Changed bool
}

// TypeField identifies the active app type.
type TypeField struct {
	Value    string
	Previous string
	Changed  bool
}

// Switched reports whether the type differs from the previous cycle's type.
func (t TypeField) Switched() bool {
	return t.Previous != "" && t.Previous != t.Value
}

// Draw controls the depth of the next reconciliation.
type Draw struct {
	// Update requests a full reconciliation. When false only layout and draw
	// finalization run.
	Update bool
}

// Container references the target surface.
type Container struct {
	Value   string
	Changed bool
}

// Title holds the chart titles drawn by the layout collaborator.
type Title struct {
	Value   string
	Sub     string
	Changed bool
}

// Format carries the active localisation bundle.
type Format struct {
	Locale *locale.Bundle
}

// Focus is the currently highlighted id value.
type Focus struct {
	Value   string
	Changed bool
}

// Axes names the record keys plotted on each axis.
type Axes struct {
	X       string
	Y       string
	Changed bool
}

// Error holds the internal error message recorded by validation.
type Error struct {
	Message string
}

// State is the mutable visualisation context. It is created once per
// visualisation instance and survives many plan/execute cycles.
type State struct {
	Type      TypeField
	Draw      Draw
	Container Container
	Title     Title

	Data   DataChannel
	Attrs  Channel
	Coords Channel
	Nodes  NodeChannel
	Edges  EdgeChannel

	Color ColorEncoding
	ID    IDEncoding
	Time  TimeEncoding
	Depth Depth
	Focus Focus
	Axes  Axes

	Timeline Flag
	Legend   Flag

	G      Groups
	Margin Margin
	Height Dimension
	Width  Dimension

	Shapes []Shape
	Error  Error
	Format Format
	Dev    bool
}

// New returns a State sized width x height that requests a full draw.
func New(width, height float64) *State {
	return &State{
		Draw:      Draw{Update: true},
		Container: Container{Changed: true},
		Data:      DataChannel{Channel: Channel{Name: ChannelData}},
		Attrs:     Channel{Name: ChannelAttrs},
		Coords:    Channel{Name: ChannelCoords},
		Nodes:     NodeChannel{Channel: Channel{Name: ChannelNodes}},
		Edges: EdgeChannel{
			Channel:   Channel{Name: ChannelEdges},
			SourceKey: "source",
			TargetKey: "target",
		},
		G:      Groups{Apps: make(map[string]Group)},
		Height: Dimension{Value: height, Viz: height},
		Width:  Dimension{Value: width, Viz: width},
		Format: Format{Locale: locale.Default()},
	}
}

// Locale returns the active bundle, falling back to the default one.
func (s *State) Locale() *locale.Bundle {
	if s.Format.Locale == nil {
		return locale.Default()
	}
	return s.Format.Locale
}
