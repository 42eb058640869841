package apptype

import (
	"context"
	"hash/fnv"
	"sort"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
)

const (
	padding    = 10.0
	nodeRadius = 6.0
	dotRadius  = 4.0
	barGap     = 4.0
)

// palette is used when no colour encoding resolves a colour.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Builtins returns the built-in app types.
func Builtins() []Descriptor {
	return []Descriptor{
		{
			Name:         "network",
			Setup:        setupNetwork,
			Requirements: []Capability{CapNodes, CapEdges},
			Draw:         drawNetwork,
		},
		{
			Name:         "scatter",
			Requirements: []Capability{CapData},
			Draw:         drawScatter,
		},
		{
			Name:         "bar",
			Requirements: []Capability{CapData},
			Draw:         drawBar,
		},
	}
}

func setupNetwork(_ context.Context, s *state.State) error {
	if s.Edges.SourceKey == "" {
		s.Edges.SourceKey = "source"
	}
	if s.Edges.TargetKey == "" {
		s.Edges.TargetKey = "target"
	}
	return nil
}

func drawNetwork(s *state.State) []state.Shape {
	w, h := s.Width.Viz, s.Height.Viz
	place := func(p state.Point) (float64, float64) {
		return padding + p.X*(w-2*padding), padding + p.Y*(h-2*padding)
	}
	rows := indexRows(s.Data.Viz, s.ID.Value)

	shapes := make([]state.Shape, 0, len(s.Edges.Links)+len(s.Nodes.Positions))
	for _, l := range s.Edges.Links {
		src, okS := s.Nodes.Positions[l.Source]
		dst, okT := s.Nodes.Positions[l.Target]
		if !okS || !okT {
			continue
		}
		x1, y1 := place(src)
		x2, y2 := place(dst)
		shapes = append(shapes, state.Shape{
			Kind: state.ShapeLine, ID: l.Source + "-" + l.Target,
			X: x1, Y: y1, X2: x2, Y2: y2, Color: "#999999",
		})
	}

	ids := make([]string, 0, len(s.Nodes.Positions))
	for id := range s.Nodes.Positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		x, y := place(s.Nodes.Positions[id])
		shapes = append(shapes, state.Shape{
			Kind: state.ShapeCircle, ID: id, X: x, Y: y, R: nodeRadius,
			Color: colorOf(s, rows[id], id),
		})
	}
	return shapes
}

func drawScatter(s *state.State) []state.Shape {
	type point struct {
		id   string
		x, y float64
		row  state.Record
	}
	points := make([]point, 0, len(s.Data.Viz))
	for _, r := range s.Data.Viz {
		x, okX := state.Number(r[s.Axes.X])
		y, okY := state.Number(r[s.Axes.Y])
		if !okX || !okY {
			continue
		}
		points = append(points, point{id: state.Text(r[s.ID.Value]), x: x, y: y, row: r})
	}
	if len(points) == 0 {
		return nil
	}

	minX, maxX, minY, maxY := points[0].x, points[0].x, points[0].y, points[0].y
	for _, p := range points[1:] {
		minX, maxX = min(minX, p.x), max(maxX, p.x)
		minY, maxY = min(minY, p.y), max(maxY, p.y)
	}
	scale := func(v, lo, hi, size float64) float64 {
		if hi == lo {
			return size / 2
		}
		return padding + (v-lo)/(hi-lo)*(size-2*padding)
	}

	shapes := make([]state.Shape, 0, len(points))
	for _, p := range points {
		shapes = append(shapes, state.Shape{
			Kind:  state.ShapeCircle,
			ID:    p.id,
			X:     scale(p.x, minX, maxX, s.Width.Viz),
			Y:     s.Height.Viz - scale(p.y, minY, maxY, s.Height.Viz),
			R:     dotRadius,
			Value: p.y,
			Color: colorOf(s, p.row, p.id),
		})
	}
	return shapes
}

func drawBar(s *state.State) []state.Shape {
	totals := make(map[string]float64)
	rows := make(map[string]state.Record)
	order := make([]string, 0)
	for _, r := range s.Data.Viz {
		id := state.Text(r[s.ID.Value])
		v, ok := state.Number(r[s.Axes.Y])
		if !ok {
			continue
		}
		if _, seen := totals[id]; !seen {
			order = append(order, id)
			rows[id] = r
		}
		totals[id] += v
	}
	if len(order) == 0 {
		return nil
	}

	peak := 0.0
	for _, v := range totals {
		peak = max(peak, v)
	}
	width := (s.Width.Viz - barGap*float64(len(order)+1)) / float64(len(order))
	shapes := make([]state.Shape, 0, len(order))
	for i, id := range order {
		height := 0.0
		if peak > 0 {
			height = totals[id] / peak * (s.Height.Viz - padding)
		}
		shapes = append(shapes, state.Shape{
			Kind:  state.ShapeRect,
			ID:    id,
			X:     barGap + float64(i)*(width+barGap),
			Y:     s.Height.Viz - height,
			W:     width,
			H:     height,
			Value: totals[id],
			Color: colorOf(s, rows[id], id),
		})
	}
	return shapes
}

func indexRows(rows []state.Record, key string) map[string]state.Record {
	out := make(map[string]state.Record, len(rows))
	for _, r := range rows {
		out[state.Text(r[key])] = r
	}
	return out
}

// colorOf picks a shape colour: the numeric value scale first, then a
// literal hex value under the colour key, then the palette.
func colorOf(s *state.State, r state.Record, id string) string {
	if scale := s.Color.ValueScale; scale != nil && r != nil {
		if v, ok := state.Number(r[scale.Key]); ok {
			return scale.Color(v)
		}
	}
	if s.Color.Key != "" && r != nil {
		if v, ok := r[s.Color.Key].(string); ok && len(v) > 0 && v[0] == '#' {
			return v
		}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return palette[h.Sum32()%uint32(len(palette))]
}
