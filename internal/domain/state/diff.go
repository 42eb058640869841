package state

import (
	"maps"
	"slices"
)

// The setters below update a field and mark it changed only when the new
// value differs from the current one.

// SetType selects the app type. The previous type is kept in
// Type.Previous until ClearChanged runs.
func (s *State) SetType(t string) {
	if s.Type.Value == t {
		return
	}
	s.Type.Value = t
	s.Type.Changed = true
}

// SetContainer points the visualisation at a new surface.
func (s *State) SetContainer(c string) {
	if s.Container.Value == c {
		return
	}
	s.Container.Value = c
	s.Container.Changed = true
}

// SetTitle sets the chart titles.
func (s *State) SetTitle(title, sub string) {
	if s.Title.Value == title && s.Title.Sub == sub {
		return
	}
	s.Title.Value = title
	s.Title.Sub = sub
	s.Title.Changed = true
}

// SetRows replaces the rows of the named channel.
func (s *State) SetRows(name ChannelName, rows []Record) {
	ch := s.Channel(name)
	if ch == nil {
		return
	}
	ch.Value = rows
	ch.Changed = true
}

// SetData replaces the primary dataset.
func (s *State) SetData(rows []Record) { s.SetRows(ChannelData, rows) }

// SetAttrs replaces the attribute table.
func (s *State) SetAttrs(rows []Record) { s.SetRows(ChannelAttrs, rows) }

// SetCoords replaces the coordinate table.
func (s *State) SetCoords(rows []Record) { s.SetRows(ChannelCoords, rows) }

// SetNodes replaces the node table.
func (s *State) SetNodes(rows []Record) { s.SetRows(ChannelNodes, rows) }

// SetEdges replaces the edge table.
func (s *State) SetEdges(rows []Record) { s.SetRows(ChannelEdges, rows) }

// SetURL points the named channel at a remote source. The channel is marked
// unloaded so the next plan schedules a load for it.
func (s *State) SetURL(name ChannelName, url string) {
	ch := s.Channel(name)
	if ch == nil || (ch.URL == url && ch.Loaded) {
		return
	}
	ch.URL = url
	ch.Loaded = false
	ch.Changed = true
}

// SetColor sets a plain colour key.
func (s *State) SetColor(key string) {
	if len(s.Color.Mapping) == 0 && s.Color.Value == key {
		return
	}
	s.Color.Value = key
	s.Color.Mapping = nil
	s.Color.Changed = true
}

// SetColorMapping sets a per-id colour mapping.
func (s *State) SetColorMapping(m ColorMapping) {
	if slices.Equal(s.Color.Mapping, m) && s.Color.Value == "" {
		return
	}
	s.Color.Value = ""
	s.Color.Mapping = m
	s.Color.Changed = true
}

// SetID sets the id field.
func (s *State) SetID(id string) {
	if s.ID.Value == id {
		return
	}
	s.ID.Value = id
	s.ID.Changed = true
}

// SetNesting sets the grouping hierarchy.
func (s *State) SetNesting(levels []string) {
	if slices.Equal(s.ID.Nesting, levels) {
		return
	}
	s.ID.Nesting = slices.Clone(levels)
	s.ID.Changed = true
}

// SetTime sets the time field.
func (s *State) SetTime(key string) {
	if s.Time.Value == key {
		return
	}
	s.Time.Value = key
	s.Time.Changed = true
}

// SetTimeFixed restricts rendering to the selected time values, or lifts the
// restriction when fixed is false.
func (s *State) SetTimeFixed(fixed bool, selected ...string) {
	if s.Time.Fixed.Value == fixed && slices.Equal(s.Time.Selected, selected) {
		return
	}
	s.Time.Fixed.Value = fixed
	s.Time.Fixed.Changed = true
	s.Time.Selected = slices.Clone(selected)
	s.Time.Changed = true
}

// SetSolo restricts rendering to the given id values.
func (s *State) SetSolo(values ...string) {
	if slices.Equal(s.Time.Solo.Values, values) {
		return
	}
	s.Time.Solo.Values = slices.Clone(values)
	s.Time.Solo.Changed = true
}

// SetMute hides the given id values.
func (s *State) SetMute(values ...string) {
	if slices.Equal(s.Time.Mute.Values, values) {
		return
	}
	s.Time.Mute.Values = slices.Clone(values)
	s.Time.Mute.Changed = true
}

// SetDepth selects the active grouping level.
func (s *State) SetDepth(depth int) {
	if s.Depth.Value == depth {
		return
	}
	s.Depth.Value = depth
	s.Depth.Changed = true
}

// SetFocus highlights an id value.
func (s *State) SetFocus(id string) {
	if s.Focus.Value == id {
		return
	}
	s.Focus.Value = id
	s.Focus.Changed = true
}

// SetAxes sets the plotted record keys.
func (s *State) SetAxes(x, y string) {
	if s.Axes.X == x && s.Axes.Y == y {
		return
	}
	s.Axes.X = x
	s.Axes.Y = y
	s.Axes.Changed = true
}

// SetTimeline toggles the timeline widget.
func (s *State) SetTimeline(on bool) {
	if s.Timeline.Value == on {
		return
	}
	s.Timeline.Value = on
	s.Timeline.Changed = true
}

// SetLegend toggles the legend widget.
func (s *State) SetLegend(on bool) {
	if s.Legend.Value == on {
		return
	}
	s.Legend.Value = on
	s.Legend.Changed = true
}

// AnyChanged reports whether any changed flag is set.
func (s *State) AnyChanged() bool {
	flags := []bool{
		s.Type.Changed, s.Container.Changed, s.Title.Changed,
		s.Color.Changed, s.ID.Changed, s.Time.Changed,
		s.Time.Fixed.Changed, s.Time.Solo.Changed, s.Time.Mute.Changed,
		s.Depth.Changed, s.Focus.Changed, s.Axes.Changed,
		s.Timeline.Changed, s.Legend.Changed,
	}
	for _, name := range Channels() {
		flags = append(flags, s.Channel(name).Changed)
	}
	return slices.Contains(flags, true)
}

// ClearChanged resets every changed flag after a successful cycle and
// remembers the current type as the previous one.
func (s *State) ClearChanged() {
	s.Type.Previous = s.Type.Value
	s.Type.Changed = false
	s.Container.Changed = false
	s.Title.Changed = false
	for _, name := range Channels() {
		s.Channel(name).Changed = false
	}
	s.Color.Changed = false
	s.ID.Changed = false
	s.Time.Changed = false
	s.Time.Fixed.Changed = false
	s.Time.Solo.Changed = false
	s.Time.Mute.Changed = false
	s.Depth.Changed = false
	s.Focus.Changed = false
	s.Axes.Changed = false
	s.Timeline.Changed = false
	s.Legend.Changed = false
}

// Snapshot is a copy of the layout-relevant part of the state.
type Snapshot struct {
	Type   string
	Margin Insets
	Width  float64
	Height float64
	Groups map[string]Group
}

// Snapshot captures the current layout.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Type:   s.Type.Value,
		Margin: Insets{Top: s.Margin.Top, Right: s.Margin.Right, Bottom: s.Margin.Bottom, Left: s.Margin.Left},
		Width:  s.Width.Viz,
		Height: s.Height.Viz,
		Groups: maps.Clone(s.G.Apps),
	}
}
