package config

import (
	"net/url"
	"path/filepath"

	"github.com/felixgeelhaar/redraw/internal/domain/locale"
	"github.com/felixgeelhaar/redraw/internal/domain/state"
)

// NewState creates a state sized by the document and applies it.
func (d *Document) NewState() (*state.State, error) {
	w, h := d.Width, d.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	s := state.New(w, h)
	if err := d.Apply(s); err != nil {
		return nil, err
	}
	s.Draw.Update = true
	return s, nil
}

// Apply writes the document into s through the diff-marking setters. Only
// fields whose value differs are marked changed; inline rows always are.
func (d *Document) Apply(s *state.State) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if d.Locale != "" {
		b, err := locale.Lookup(d.Locale)
		if err != nil {
			return NewLocaleUnknownError(d.Locale, locale.Available(), err)
		}
		s.Format.Locale = b
	}

	s.SetType(d.Type)
	s.SetContainer(d.Container)
	s.SetTitle(d.Title.Text, d.Title.Sub)
	if d.Width > 0 {
		s.Width.Value = d.Width
	}
	if d.Height > 0 {
		s.Height.Value = d.Height
	}
	s.Margin.Base = state.Insets{
		Top: d.Margin.Top, Right: d.Margin.Right,
		Bottom: d.Margin.Bottom, Left: d.Margin.Left,
	}

	d.applySource(s, state.ChannelData, d.Data)
	d.applySource(s, state.ChannelAttrs, d.Attrs)
	d.applySource(s, state.ChannelCoords, d.Coords)
	d.applySource(s, state.ChannelNodes, d.Nodes)
	d.applySource(s, state.ChannelEdges, d.Edges.SourceSpec)
	if d.Edges.Source != "" && d.Edges.Source != s.Edges.SourceKey {
		s.Edges.SourceKey = d.Edges.Source
		s.Edges.Changed = true
	}
	if d.Edges.Target != "" && d.Edges.Target != s.Edges.TargetKey {
		s.Edges.TargetKey = d.Edges.Target
		s.Edges.Changed = true
	}

	s.SetID(d.ID)
	s.SetNesting(d.Nesting)
	if len(d.Color.Mapping) > 0 {
		m := make(state.ColorMapping, 0, len(d.Color.Mapping))
		for _, e := range d.Color.Mapping {
			m = append(m, state.MappingEntry{ID: e.ID, Key: e.Key})
		}
		s.SetColorMapping(m)
	} else {
		s.SetColor(d.Color.Key)
	}

	s.SetTime(d.Time.Key)
	s.SetTimeFixed(d.Time.Fixed, d.Time.Selected...)
	s.SetSolo(d.Time.Solo...)
	s.SetMute(d.Time.Mute...)
	s.SetDepth(d.Depth)
	s.SetFocus(d.Focus)
	s.SetAxes(d.Axes.X, d.Axes.Y)
	s.SetLegend(d.Legend)
	s.SetTimeline(d.Timeline)
	s.Dev = d.Dev
	s.Draw.Update = d.Draw == nil || *d.Draw

	return nil
}

func (d *Document) applySource(s *state.State, ch state.ChannelName, src SourceSpec) {
	switch {
	case src.URL != "":
		s.SetURL(ch, d.resolve(src.URL))
	case src.Rows != nil:
		rows := make([]state.Record, len(src.Rows))
		for i, r := range src.Rows {
			rows[i] = state.Record(r)
		}
		s.SetRows(ch, rows)
	}
}

// resolve joins a relative local path with the document directory.
func (d *Document) resolve(ref string) string {
	if d.baseDir == "" {
		return ref
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return ref
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(d.baseDir, ref)
}
