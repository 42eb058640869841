// Package planner computes the ordered steps that bring a rendered
// visualisation back in line with its state.
package planner

import (
	"context"

	"github.com/felixgeelhaar/redraw/internal/domain/apptype"
	"github.com/felixgeelhaar/redraw/internal/domain/plan"
	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// Step identifiers, in emission order.
var (
	StepAppSetup       = plan.MustNewStepID("app:setup")
	StepSurfaceInit    = plan.MustNewStepID("surface:init")
	StepGroupCreate    = plan.MustNewStepID("group:create")
	StepDataReindex    = plan.MustNewStepID("data:reindex")
	StepAttrsReindex   = plan.MustNewStepID("attrs:reindex")
	StepColorResolve   = plan.MustNewStepID("color:resolve")
	StepEdgesParse     = plan.MustNewStepID("edges:parse")
	StepNodesParse     = plan.MustNewStepID("nodes:parse")
	StepDataGroup      = plan.MustNewStepID("data:group")
	StepDataFetch      = plan.MustNewStepID("data:fetch")
	StepColorScale     = plan.MustNewStepID("color:scale")
	StepTooltipCleanup = plan.MustNewStepID("tooltip:cleanup")
	StepValidate       = plan.MustNewStepID("validate")
	StepLayout         = plan.MustNewStepID("layout")
	StepFocusTooltip   = plan.MustNewStepID("focus:tooltip")
	StepSurfaceCommit  = plan.MustNewStepID("surface:commit")
	StepShapesDraw     = plan.MustNewStepID("shapes:draw")
	StepFinalize       = plan.MustNewStepID("finalize")
)

// LoadStepID returns the identifier of the load step for a channel.
func LoadStepID(channel state.ChannelName) plan.StepID {
	return plan.MustNewStepID("load:" + channel.String())
}

// Collaborators are the external components invoked by step actions. Nil
// members are replaced with no-op implementations.
type Collaborators struct {
	Loader    ports.Loader
	Analyzer  ports.Analyzer
	Validator ports.Validator
	Surface   ports.Surface
	Layout    ports.Layout
	History   ports.History
	Renderer  ports.Renderer
}

// Planner builds plans. It holds no per-cycle state and may be reused.
type Planner struct {
	registry *apptype.Registry
	c        Collaborators
}

// NewPlanner creates a Planner over the registry and collaborators.
func NewPlanner(registry *apptype.Registry, c Collaborators) *Planner {
	if registry == nil {
		registry = apptype.NewRegistry()
	}
	return &Planner{registry: registry, c: c.withDefaults()}
}

// Build returns the steps for the current state. It reads the state and
// never mutates it; the returned steps mutate it when executed.
//
// Unknown app types yield a plan without the type-dependent steps (setup,
// group creation, edge and node parsing, shape drawing).
func (p *Planner) Build(s *state.State) *plan.Plan {
	pl := plan.New()
	loc := s.Locale()
	msg := loc.Message
	appType := s.Type.Value
	desc, known := p.registry.Lookup(appType)

	for _, ch := range state.Channels() {
		if s.Channel(ch).NeedsLoad() {
			pl.Add(plan.NewStep(LoadStepID(ch), plan.Async(p.load(ch)), msg.Loading))
		}
	}

	if s.Draw.Update {
		appMessage := loc.Format(msg.Initializing, loc.AppName(appType))

		if known && desc.Setup != nil {
			pl.Add(plan.NewStep(StepAppSetup, plan.Single(plan.Op(desc.Setup)), appMessage))
		}
		if s.Container.Changed {
			pl.Add(plan.NewStep(StepSurfaceInit, plan.Single(p.initSurface), appMessage))
		}
		if known && !s.G.Has(appType) {
			pl.Add(plan.NewStep(StepGroupCreate, plan.Single(p.createGroup(appType)), appMessage))
		}
		if s.Data.Changed {
			pl.Add(plan.NewStep(StepDataReindex, plan.Single(p.reindexData), msg.Data))
		}
		if s.Attrs.Changed {
			pl.Add(plan.NewStep(StepAttrsReindex, plan.Single(p.reindexAttrs), msg.Data))
		}
		pl.Add(plan.NewStep(StepColorResolve, plan.Single(resolveColor), msg.Data))

		// A pending edge load counts as a source: the load step runs first.
		edgesAvailable := s.Edges.HasSource() || s.Edges.NeedsLoad()
		if known && desc.Requires(apptype.CapEdges) && edgesAvailable &&
			(!s.Edges.Linked || s.Edges.Changed) {
			pl.Add(plan.NewStep(StepEdgesParse, plan.Single(p.parseEdges), msg.Data))
		}
		if known && desc.Requires(apptype.CapNodes) && edgesAvailable &&
			(s.Nodes.Positions == nil || s.Nodes.Changed) {
			pl.Add(plan.NewStep(StepNodesParse, plan.Single(p.parseNodes), msg.Data))
		}
		if s.Data.Changed || s.Time.Changed || s.ID.Changed {
			pl.Add(plan.NewStep(StepDataGroup, plan.Single(p.group), msg.Data))
		}

		pl.Add(plan.NewStep(StepDataFetch, plan.Single(p.fetch), msg.Data))
		pl.Add(plan.NewStep(StepColorScale, plan.Single(p.colorScale), msg.Data).
			WithCheck(ColorScaleNeeded))
	}

	pl.Add(plan.NewStep(StepTooltipCleanup, plan.Single(p.cleanTooltips(appType)), msg.UI))
	pl.Add(plan.NewStep(StepValidate, plan.Single(p.validate), msg.UI))
	pl.Add(plan.NewStep(StepLayout, plan.Single(p.layout), msg.UI))
	pl.Add(plan.NewStep(StepFocusTooltip, plan.Single(p.wrap(p.c.Renderer.FocusTooltip)), msg.UI))
	pl.Add(plan.NewStep(StepSurfaceCommit, plan.Single(p.wrap(p.c.Surface.Commit)), msg.Draw))

	if s.Draw.Update && known {
		pl.Add(plan.NewStep(StepShapesDraw, plan.Sequence(
			p.wrap(p.c.Renderer.DrawType),
			p.wrap(p.c.Renderer.DrawShapes),
		), msg.Draw))
	}

	pl.Add(plan.NewStep(StepFinalize, plan.Sequence(
		p.wrap(p.c.Renderer.FocusViz),
		p.wrap(p.c.Renderer.Finish),
	), msg.Draw))

	return pl
}

// ColorScaleNeeded reports whether the numeric colour scale must be
// recomputed. It is evaluated when the colour-scale step is about to run,
// after key indexing and colour resolution have updated the state.
func ColorScaleNeeded(s *state.State) bool {
	c := &s.Color
	if !c.IsSet() || c.Type != state.KeyNumber {
		return false
	}
	if len(c.Mapping) == 0 && s.ID.Contains(c.Value) {
		return false
	}
	if !s.Data.HasSource() || c.Equals(s.ID.Value) {
		return false
	}
	return c.Changed || s.Data.Changed || s.Depth.Changed ||
		(s.Time.Fixed.Value && (s.Time.Solo.Changed || s.Time.Mute.Changed))
}

func (p *Planner) load(ch state.ChannelName) plan.AsyncOp {
	return func(ctx context.Context, s *state.State, done plan.Done) {
		p.c.Loader.Load(ctx, s, ch, func(rows []state.Record, err error) {
			if err != nil {
				done(plan.NewLoadFailedError(LoadStepID(ch).String(), err))
				return
			}
			done(nil, func(s *state.State) {
				s.Channel(ch).Assign(rows)
			})
		})
	}
}

func (p *Planner) initSurface(_ context.Context, s *state.State) error {
	return p.c.Surface.Init(s)
}

func (p *Planner) createGroup(appType string) plan.Op {
	return func(_ context.Context, s *state.State) error {
		g, err := p.c.Surface.CreateGroup(s, appType)
		if err != nil {
			return err
		}
		g.Opacity = 0
		s.G.Set(appType, g)
		return nil
	}
}

func (p *Planner) reindexData(_ context.Context, s *state.State) error {
	s.Data.Cache = make(map[string]any)
	s.Nodes.Restricted = nil
	s.Edges.Restricted = nil
	p.c.Analyzer.IndexKeys(s, state.ChannelData)
	return nil
}

func (p *Planner) reindexAttrs(_ context.Context, s *state.State) error {
	p.c.Analyzer.IndexKeys(s, state.ChannelAttrs)
	return nil
}

func resolveColor(_ context.Context, s *state.State) error {
	s.ResolveColorType()
	return nil
}

func (p *Planner) parseEdges(_ context.Context, s *state.State) error {
	return p.c.Analyzer.ParseEdges(s)
}

func (p *Planner) parseNodes(_ context.Context, s *state.State) error {
	return p.c.Analyzer.ParseNodes(s)
}

func (p *Planner) group(_ context.Context, s *state.State) error {
	return p.c.Analyzer.Group(s)
}

// fetch fills the pool and render datasets. Without a fixed time the pool
// is drawn as is; with a fixed time the render dataset is the pool
// restricted to the selected time values.
func (p *Planner) fetch(_ context.Context, s *state.State) error {
	pool := p.c.Analyzer.Fetch(s, ports.SelectAll)
	s.Data.Pool = pool
	if !s.Time.Fixed.Value {
		s.Data.Viz = pool
		return nil
	}
	s.Data.Viz = p.c.Analyzer.Fetch(s, ports.SelectCurrent)
	return nil
}

func (p *Planner) colorScale(_ context.Context, s *state.State) error {
	return p.c.Analyzer.ColorScale(s)
}

func (p *Planner) cleanTooltips(appType string) plan.Op {
	return func(_ context.Context, s *state.State) error {
		if prev := s.Type.Previous; prev != "" && prev != appType {
			p.c.Surface.RemoveTooltip(prev)
		}
		p.c.Surface.RemoveTooltip(appType)
		return nil
	}
}

func (p *Planner) validate(ctx context.Context, s *state.State) error {
	if err := p.c.Validator.Validate(ctx, s); err != nil {
		return plan.NewValidationFailedError(StepValidate.String(), err)
	}
	return nil
}

// layout resolves margins and the usable viewport. A full pass redraws the
// widgets, which reserve their own space; a lightweight pass measures the
// widgets already on the surface and folds them into the bottom margin.
func (p *Planner) layout(ctx context.Context, s *state.State) error {
	s.ResetLayout()
	p.c.Layout.Titles(s)

	if s.Draw.Update {
		for _, w := range []ports.Widget{ports.WidgetDrawer, ports.WidgetTimeline, ports.WidgetLegend} {
			if err := p.c.Layout.DrawWidget(s, w); err != nil {
				return err
			}
		}
	} else {
		drawer := p.c.Layout.Measure(ports.WidgetDrawer).Height
		var timeline, legend float64
		if s.Timeline.Value {
			e := p.c.Layout.Measure(ports.WidgetTimeline)
			timeline = e.Height + e.Y
		}
		if s.Legend.Value {
			e := p.c.Layout.Measure(ports.WidgetLegend)
			legend = e.Height + e.Y
		}
		s.Margin.Bottom += drawer + timeline + legend
	}

	if err := p.c.History.Record(ctx, s); err != nil {
		return err
	}
	s.ShrinkViewport()
	return nil
}

func (p *Planner) wrap(fn func(*state.State) error) plan.Op {
	return func(_ context.Context, s *state.State) error {
		return fn(s)
	}
}
