package state

// Group is a drawing group owned by one app type.
type Group struct {
	ID      string
	Opacity float64
}

// Groups tracks the root hierarchy and the per-type drawing groups.
type Groups struct {
	Root bool
	Apps map[string]Group
}

// Has reports whether a group exists for the app type.
func (g *Groups) Has(appType string) bool {
	if g.Apps == nil {
		return false
	}
	_, ok := g.Apps[appType]
	return ok
}

// Set records the group for the app type.
func (g *Groups) Set(appType string, group Group) {
	if g.Apps == nil {
		g.Apps = make(map[string]Group)
	}
	g.Apps[appType] = group
}

// Margin accumulates space reserved around the viewport. Base holds the
// configured margins that Process restores at the start of each layout pass.
type Margin struct {
	Top, Right, Bottom, Left float64
	Base                     Insets
}

// Insets is a plain set of margins.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Process resets the accumulated margins to their configured base.
func (m *Margin) Process() {
	m.Top = m.Base.Top
	m.Right = m.Base.Right
	m.Bottom = m.Base.Bottom
	m.Left = m.Base.Left
}

// Dimension is a configured size and the usable viewport size left after
// margins.
type Dimension struct {
	Value float64
	Viz   float64
}

// ResetLayout restores margins and viewport sizes before a layout pass.
func (s *State) ResetLayout() {
	s.Margin.Process()
	s.Height.Viz = s.Height.Value
	s.Width.Viz = s.Width.Value
}

// ShrinkViewport removes the resolved margins from the usable viewport.
func (s *State) ShrinkViewport() {
	s.Height.Viz -= s.Margin.Top + s.Margin.Bottom
	s.Width.Viz -= s.Margin.Left + s.Margin.Right
}

// ShapeKind names a drawable primitive.
type ShapeKind string

// Shape kinds produced by app draw routines.
const (
	ShapeCircle ShapeKind = "circle"
	ShapeRect   ShapeKind = "rect"
	ShapeLine   ShapeKind = "line"
)

// Shape is one drawable primitive in viewport coordinates.
type Shape struct {
	Kind   ShapeKind
	ID     string
	X, Y   float64
	X2, Y2 float64
	W, H   float64
	R      float64
	Value  float64
	Color  string
}
