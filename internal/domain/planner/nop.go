package planner

import (
	"context"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

func (c Collaborators) withDefaults() Collaborators {
	if c.Loader == nil {
		c.Loader = nopLoader{}
	}
	if c.Analyzer == nil {
		c.Analyzer = nopAnalyzer{}
	}
	if c.Validator == nil {
		c.Validator = nopValidator{}
	}
	if c.Surface == nil {
		c.Surface = nopSurface{}
	}
	if c.Layout == nil {
		c.Layout = nopLayout{}
	}
	if c.History == nil {
		c.History = nopHistory{}
	}
	if c.Renderer == nil {
		c.Renderer = nopRenderer{}
	}
	return c
}

// nopLoader completes every load with no rows.
type nopLoader struct{}

func (nopLoader) Load(ctx context.Context, _ *state.State, _ state.ChannelName, done func([]state.Record, error)) {
	done(nil, ctx.Err())
}

type nopAnalyzer struct{}

func (nopAnalyzer) IndexKeys(*state.State, state.ChannelName) {}
func (nopAnalyzer) ParseEdges(*state.State) error             { return nil }
func (nopAnalyzer) ParseNodes(*state.State) error             { return nil }
func (nopAnalyzer) Group(*state.State) error                  { return nil }
func (nopAnalyzer) ColorScale(*state.State) error             { return nil }

func (nopAnalyzer) Fetch(s *state.State, _ ports.Selection) []state.Record {
	return s.Data.Value
}

type nopValidator struct{}

func (nopValidator) Validate(context.Context, *state.State) error { return nil }

type nopSurface struct{}

func (nopSurface) Init(*state.State) error   { return nil }
func (nopSurface) RemoveTooltip(string)      {}
func (nopSurface) Commit(*state.State) error { return nil }

func (nopSurface) CreateGroup(_ *state.State, appType string) (state.Group, error) {
	return state.Group{ID: appType}, nil
}

type nopLayout struct{}

func (nopLayout) Titles(*state.State)                         {}
func (nopLayout) DrawWidget(*state.State, ports.Widget) error { return nil }
func (nopLayout) Measure(ports.Widget) ports.Extent           { return ports.Extent{} }

type nopHistory struct{}

func (nopHistory) Record(context.Context, *state.State) error { return nil }

type nopRenderer struct{}

func (nopRenderer) FocusTooltip(*state.State) error { return nil }
func (nopRenderer) DrawType(*state.State) error     { return nil }
func (nopRenderer) DrawShapes(*state.State) error   { return nil }
func (nopRenderer) FocusViz(*state.State) error     { return nil }
func (nopRenderer) Finish(*state.State) error       { return nil }
