package testutil

import (
	"github.com/felixgeelhaar/redraw/internal/domain/state"
)

// StateBuilder builds visualisation states for tests.
type StateBuilder struct {
	s *state.State
}

// NewStateBuilder creates a builder over an 800x600 state.
func NewStateBuilder() *StateBuilder {
	return &StateBuilder{s: state.New(800, 600)}
}

// WithType sets the app type.
func (b *StateBuilder) WithType(t string) *StateBuilder {
	b.s.SetType(t)
	return b
}

// WithData sets the primary dataset.
func (b *StateBuilder) WithData(rows ...state.Record) *StateBuilder {
	b.s.SetData(rows)
	return b
}

// WithNodes sets the node table.
func (b *StateBuilder) WithNodes(rows ...state.Record) *StateBuilder {
	b.s.SetNodes(rows)
	return b
}

// WithEdges sets the edge table.
func (b *StateBuilder) WithEdges(rows ...state.Record) *StateBuilder {
	b.s.SetEdges(rows)
	return b
}

// WithURL points a channel at a remote source.
func (b *StateBuilder) WithURL(ch state.ChannelName, url string) *StateBuilder {
	b.s.SetURL(ch, url)
	return b
}

// WithID sets the id field.
func (b *StateBuilder) WithID(id string) *StateBuilder {
	b.s.SetID(id)
	return b
}

// WithColor sets a plain colour key.
func (b *StateBuilder) WithColor(key string) *StateBuilder {
	b.s.SetColor(key)
	return b
}

// WithTime sets the time field.
func (b *StateBuilder) WithTime(key string) *StateBuilder {
	b.s.SetTime(key)
	return b
}

// WithAxes sets the plotted keys.
func (b *StateBuilder) WithAxes(x, y string) *StateBuilder {
	b.s.SetAxes(x, y)
	return b
}

// WithoutDrawUpdate turns the cycle into a lightweight layout pass.
func (b *StateBuilder) WithoutDrawUpdate() *StateBuilder {
	b.s.Draw.Update = false
	return b
}

// Settled clears all changed flags, as after a completed cycle.
func (b *StateBuilder) Settled() *StateBuilder {
	b.s.ClearChanged()
	return b
}

// Build returns the state.
func (b *StateBuilder) Build() *state.State {
	return b.s
}

// NetworkState returns a small, fully populated network state.
func NetworkState() *state.State {
	return NewStateBuilder().
		WithType("network").
		WithID("id").
		WithNodes(
			state.Record{"id": "alpha", "x": 0.1, "y": 0.2},
			state.Record{"id": "beta", "x": 0.8, "y": 0.3},
		).
		WithEdges(
			state.Record{"source": "alpha", "target": "beta"},
		).
		WithData(
			state.Record{"id": "alpha", "value": 3.0},
			state.Record{"id": "beta", "value": 7.0},
		).
		Build()
}
