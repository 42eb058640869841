// Package dataset provides the reference data collaborators: key indexing,
// edge and node parsing, grouping, render fetches and colour scales.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// DefaultRamp is the colour ramp used for numeric colour scales.
var DefaultRamp = []string{"#282f6b", "#419391", "#afd5e8", "#eace3f", "#b35c1e", "#b22200"}

// ErrNoLinks is returned when no edge row yields a usable link.
var ErrNoLinks = errors.New("no edge row has both a source and a target")

// Analyzer is the reference ports.Analyzer.
type Analyzer struct {
	ramp []string
}

var _ ports.Analyzer = (*Analyzer)(nil)

// NewAnalyzer creates an Analyzer using DefaultRamp.
func NewAnalyzer() *Analyzer {
	return &Analyzer{ramp: DefaultRamp}
}

// WithRamp returns an Analyzer using the given colour ramp.
func (a *Analyzer) WithRamp(ramp []string) *Analyzer {
	return &Analyzer{ramp: append([]string(nil), ramp...)}
}

// IndexKeys classifies every key found in the channel's rows. The first
// non-nil value of a key decides its type.
func (a *Analyzer) IndexKeys(s *state.State, channel state.ChannelName) {
	ch := s.Channel(channel)
	if ch == nil {
		return
	}
	keys := make(state.KeyIndex)
	for _, row := range ch.Value {
		for k, v := range row {
			if t, seen := keys[k]; seen && t != state.KeyUnknown {
				continue
			}
			keys[k] = classify(v)
		}
	}
	ch.Keys = keys
}

func classify(v any) state.KeyType {
	if _, ok := state.Number(v); ok {
		return state.KeyNumber
	}
	switch v.(type) {
	case string:
		return state.KeyString
	case bool:
		return state.KeyBoolean
	case []any, []string, []float64:
		return state.KeyArray
	case map[string]any, state.Record:
		return state.KeyKeys
	}
	return state.KeyUnknown
}

// ParseEdges turns the raw edge rows into links. Endpoints may be plain ids
// or node records carrying the id field.
func (a *Analyzer) ParseEdges(s *state.State) error {
	e := &s.Edges
	links := make([]state.Link, 0, len(e.Value))
	for _, row := range e.Value {
		src := endpoint(row[e.SourceKey], s.ID.Value)
		dst := endpoint(row[e.TargetKey], s.ID.Value)
		if src == "" || dst == "" {
			continue
		}
		links = append(links, state.Link{Source: src, Target: dst, Record: row})
	}
	e.Links = links
	e.Linked = true
	if len(links) == 0 && len(e.Value) > 0 {
		return fmt.Errorf("parse edges (source %q, target %q): %w", e.SourceKey, e.TargetKey, ErrNoLinks)
	}
	return nil
}

func endpoint(v any, idKey string) string {
	switch t := v.(type) {
	case map[string]any:
		return state.Text(t[idKey])
	case state.Record:
		return state.Text(t[idKey])
	}
	return state.Text(v)
}

// ParseNodes derives node positions in the unit square. Nodes with numeric
// x and y fields keep their relative placement; otherwise every node found
// in the node rows or the parsed links is placed on a circle.
func (a *Analyzer) ParseNodes(s *state.State) error {
	idKey := s.ID.Value
	ids := make([]string, 0)
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	type xy struct{ x, y float64 }
	given := make(map[string]xy)
	for _, row := range s.Nodes.Value {
		id := state.Text(row[idKey])
		add(id)
		x, okX := state.Number(row["x"])
		y, okY := state.Number(row["y"])
		if okX && okY {
			given[id] = xy{x, y}
		}
	}
	for _, l := range s.Edges.Links {
		add(l.Source)
		add(l.Target)
	}

	positions := make(map[string]state.Point, len(ids))
	if len(ids) > 0 && len(given) == len(ids) {
		minX, maxX := math.Inf(1), math.Inf(-1)
		minY, maxY := math.Inf(1), math.Inf(-1)
		for _, p := range given {
			minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
			minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
		}
		for id, p := range given {
			positions[id] = state.Point{X: unit(p.x, minX, maxX), Y: unit(p.y, minY, maxY)}
		}
	} else {
		sort.Strings(ids)
		for i, id := range ids {
			angle := 2 * math.Pi * float64(i) / float64(len(ids))
			positions[id] = state.Point{X: 0.5 + 0.45*math.Cos(angle), Y: 0.5 + 0.45*math.Sin(angle)}
		}
	}
	s.Nodes.Positions = positions
	return nil
}

func unit(v, lo, hi float64) float64 {
	if hi == lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

// Group nests the dataset by time value and then by the id value at the
// active depth. Without a time field every row falls in one time bucket "".
func (a *Analyzer) Group(s *state.State) error {
	idKey := idAtDepth(s)
	groups := make(map[string]map[string][]state.Record)
	for _, row := range s.Data.Value {
		t := ""
		if s.Time.Value != "" {
			t = state.Text(row[s.Time.Value])
		}
		byID, ok := groups[t]
		if !ok {
			byID = make(map[string][]state.Record)
			groups[t] = byID
		}
		id := state.Text(row[idKey])
		byID[id] = append(byID[id], row)
	}

	times := make([]string, 0, len(groups))
	for t := range groups {
		times = append(times, t)
	}
	sortTimes(times)
	s.Data.Nested = state.Nest{Times: times, Groups: groups}
	return nil
}

// sortTimes orders numeric time values numerically and the rest lexically.
func sortTimes(times []string) {
	sort.SliceStable(times, func(i, j int) bool {
		a, errA := parseFloat(times[i])
		b, errB := parseFloat(times[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return times[i] < times[j]
	})
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func idAtDepth(s *state.State) string {
	levels := s.ID.Levels()
	if len(levels) == 0 {
		return s.ID.Value
	}
	d := min(max(s.Depth.Value, 0), len(levels)-1)
	return levels[d]
}

// Fetch returns the rows to draw. SelectCurrent restricts the nested data to
// the selected time values; SelectAll covers every time value. Solo and
// mute selections filter on the id at the active depth.
func (a *Analyzer) Fetch(s *state.State, sel ports.Selection) []state.Record {
	nest := s.Data.Nested
	if nest.Groups == nil {
		nest = state.Nest{Times: []string{""}, Groups: map[string]map[string][]state.Record{"": {"": s.Data.Value}}}
	}

	allowed := func(string) bool { return true }
	if sel == ports.SelectCurrent && len(s.Time.Selected) > 0 {
		want := make(map[string]bool, len(s.Time.Selected))
		for _, t := range s.Time.Selected {
			want[t] = true
		}
		allowed = func(t string) bool { return want[t] }
	}

	idKey := idAtDepth(s)
	out := make([]state.Record, 0)
	for _, t := range nest.Times {
		if !allowed(t) {
			continue
		}
		byID := nest.Groups[t]
		ids := make([]string, 0, len(byID))
		for id := range byID {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			for _, row := range byID[id] {
				rid := state.Text(row[idKey])
				if len(s.Time.Solo.Values) > 0 && !s.Time.Solo.Has(rid) {
					continue
				}
				if s.Time.Mute.Has(rid) {
					continue
				}
				out = append(out, row)
			}
		}
	}
	return out
}

// extent is a numeric domain.
type extent struct {
	min, max float64
}

// ColorScale computes the value scale for the resolved colour key over the
// pool dataset, falling back to the attrs table. The domain is recomputed
// on every call since solo, mute and depth all reshape the pool.
func (a *Analyzer) ColorScale(s *state.State) error {
	key := s.Color.Key
	if key == "" {
		return nil
	}
	ext, found := numericExtent(s.Data.Pool, key)
	if !found {
		ext, found = numericExtent(s.Attrs.Value, key)
	}
	if !found {
		return fmt.Errorf("colour key %q has no numeric values", key)
	}
	s.Color.ValueScale = &state.ValueScale{
		Key:    key,
		Min:    ext.min,
		Max:    ext.max,
		Colors: append([]string(nil), a.ramp...),
	}
	return nil
}

func numericExtent(rows []state.Record, key string) (extent, bool) {
	ext := extent{min: math.Inf(1), max: math.Inf(-1)}
	found := false
	for _, row := range rows {
		v, ok := state.Number(row[key])
		if !ok {
			continue
		}
		found = true
		ext.min = math.Min(ext.min, v)
		ext.max = math.Max(ext.max, v)
	}
	return ext, found
}
