package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// Recorder implements every collaborator port and records the calls made
// on it in order.
type Recorder struct {
	mu    sync.Mutex
	calls []string

	// Rows are assigned by Load per channel.
	Rows map[state.ChannelName][]state.Record
	// LoadErr fails Load for a channel.
	LoadErr map[state.ChannelName]error
	// AsyncLoad completes Load from another goroutine.
	AsyncLoad bool
	// ValidateErr is returned by Validate.
	ValidateErr error
	// Extents are returned by Measure.
	Extents map[ports.Widget]ports.Extent
	// Fail makes the named call return this error.
	Fail map[string]error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Rows:    make(map[state.ChannelName][]state.Record),
		LoadErr: make(map[state.ChannelName]error),
		Extents: make(map[ports.Widget]ports.Extent),
		Fail:    make(map[string]error),
	}
}

func (r *Recorder) record(call string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return r.Fail[call]
}

// Calls returns the recorded calls.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Called reports whether call was recorded.
func (r *Recorder) Called(call string) bool {
	return slices.Contains(r.Calls(), call)
}

// Reset drops the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Load implements ports.Loader.
func (r *Recorder) Load(ctx context.Context, _ *state.State, ch state.ChannelName, done func([]state.Record, error)) {
	_ = r.record("load:" + ch.String())
	finish := func() {
		if err := ctx.Err(); err != nil {
			done(nil, err)
			return
		}
		if err := r.LoadErr[ch]; err != nil {
			done(nil, err)
			return
		}
		done(r.Rows[ch], nil)
	}
	if r.AsyncLoad {
		go finish()
		return
	}
	finish()
}

// IndexKeys implements ports.Analyzer.
func (r *Recorder) IndexKeys(s *state.State, ch state.ChannelName) {
	_ = r.record("index:" + ch.String())
	c := s.Channel(ch)
	c.Keys = make(state.KeyIndex)
	for _, row := range c.Value {
		for k, v := range row {
			if _, ok := state.Number(v); ok {
				c.Keys[k] = state.KeyNumber
			} else if _, seen := c.Keys[k]; !seen {
				c.Keys[k] = state.KeyString
			}
		}
	}
}

// ParseEdges implements ports.Analyzer.
func (r *Recorder) ParseEdges(s *state.State) error {
	if err := r.record("edges"); err != nil {
		return err
	}
	s.Edges.Linked = true
	return nil
}

// ParseNodes implements ports.Analyzer.
func (r *Recorder) ParseNodes(s *state.State) error {
	if err := r.record("nodes"); err != nil {
		return err
	}
	s.Nodes.Positions = make(map[string]state.Point)
	return nil
}

// Group implements ports.Analyzer.
func (r *Recorder) Group(*state.State) error {
	return r.record("group")
}

// Fetch implements ports.Analyzer.
func (r *Recorder) Fetch(s *state.State, sel ports.Selection) []state.Record {
	if sel == ports.SelectCurrent {
		_ = r.record("fetch:current")
		return s.Data.Value[:min(1, len(s.Data.Value))]
	}
	_ = r.record("fetch:all")
	return s.Data.Value
}

// ColorScale implements ports.Analyzer.
func (r *Recorder) ColorScale(*state.State) error {
	return r.record("colorscale")
}

// Validate implements ports.Validator.
func (r *Recorder) Validate(context.Context, *state.State) error {
	_ = r.record("validate")
	return r.ValidateErr
}

// Init implements ports.Surface.
func (r *Recorder) Init(s *state.State) error {
	if err := r.record("surface:init"); err != nil {
		return err
	}
	s.G.Root = true
	return nil
}

// CreateGroup implements ports.Surface.
func (r *Recorder) CreateGroup(_ *state.State, appType string) (state.Group, error) {
	if err := r.record("group:" + appType); err != nil {
		return state.Group{}, err
	}
	return state.Group{ID: appType, Opacity: 1}, nil
}

// RemoveTooltip implements ports.Surface.
func (r *Recorder) RemoveTooltip(appType string) {
	_ = r.record("tooltip:" + appType)
}

// Commit implements ports.Surface.
func (r *Recorder) Commit(*state.State) error {
	return r.record("commit")
}

// Titles implements ports.Layout.
func (r *Recorder) Titles(*state.State) {
	_ = r.record("titles")
}

// DrawWidget implements ports.Layout.
func (r *Recorder) DrawWidget(s *state.State, w ports.Widget) error {
	if err := r.record("widget:" + string(w)); err != nil {
		return err
	}
	e := r.Extents[w]
	s.Margin.Bottom += e.Height + e.Y
	return nil
}

// Measure implements ports.Layout.
func (r *Recorder) Measure(w ports.Widget) ports.Extent {
	_ = r.record("measure:" + string(w))
	return r.Extents[w]
}

// Record implements ports.History.
func (r *Recorder) Record(context.Context, *state.State) error {
	return r.record("history")
}

// FocusTooltip implements ports.Renderer.
func (r *Recorder) FocusTooltip(*state.State) error {
	return r.record("focus:tooltip")
}

// DrawType implements ports.Renderer.
func (r *Recorder) DrawType(*state.State) error {
	return r.record("draw:type")
}

// DrawShapes implements ports.Renderer.
func (r *Recorder) DrawShapes(*state.State) error {
	return r.record("draw:shapes")
}

// FocusViz implements ports.Renderer.
func (r *Recorder) FocusViz(*state.State) error {
	return r.record("focus:viz")
}

// Finish implements ports.Renderer.
func (r *Recorder) Finish(*state.State) error {
	return r.record("finish")
}
