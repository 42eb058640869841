// Package app wires the planner, executor and adapters into the redraw
// application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/redraw/internal/adapters/history"
	"github.com/felixgeelhaar/redraw/internal/adapters/loader"
	"github.com/felixgeelhaar/redraw/internal/adapters/raster"
	"github.com/felixgeelhaar/redraw/internal/domain/apptype"
	"github.com/felixgeelhaar/redraw/internal/domain/config"
	"github.com/felixgeelhaar/redraw/internal/domain/dataset"
	"github.com/felixgeelhaar/redraw/internal/domain/execution"
	"github.com/felixgeelhaar/redraw/internal/domain/locale"
	"github.com/felixgeelhaar/redraw/internal/domain/plan"
	"github.com/felixgeelhaar/redraw/internal/domain/planner"
	"github.com/felixgeelhaar/redraw/internal/domain/reconcile"
	"github.com/felixgeelhaar/redraw/internal/domain/validate"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// ErrNoDocuments is returned by Render when called without documents.
var ErrNoDocuments = errors.New("no documents to render")

// App is the main application orchestrator.
type App struct {
	registry    *apptype.Registry
	canvas      *raster.Canvas
	loader      *loader.Loader
	history     *history.History
	logger      ports.Logger
	out         io.Writer
	styles      styles
	dryRun      bool
	cancelGrace time.Duration
	progress    execution.ProgressFunc
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger shared by the session and adapters.
func WithLogger(logger ports.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithCanvas replaces the raster surface.
func WithCanvas(c *raster.Canvas) Option {
	return func(a *App) {
		a.canvas = c
	}
}

// WithHistory replaces the layout history.
func WithHistory(h *history.History) Option {
	return func(a *App) {
		a.history = h
	}
}

// WithDryRun makes Render evaluate plans without running any step.
func WithDryRun(dryRun bool) Option {
	return func(a *App) {
		a.dryRun = dryRun
	}
}

// WithCancelGrace bounds the wait for an asynchronous step after a cancel.
func WithCancelGrace(d time.Duration) Option {
	return func(a *App) {
		a.cancelGrace = d
	}
}

// WithProgress reports each step to fn before it runs.
func WithProgress(fn execution.ProgressFunc) Option {
	return func(a *App) {
		a.progress = fn
	}
}

// New creates a new App writing human-readable output to out.
func New(out io.Writer, opts ...Option) *App {
	registry := apptype.NewDefaultRegistry()
	a := &App{
		registry:    registry,
		logger:      ports.NewNopLogger(),
		history:     history.New(),
		out:         out,
		styles:      newStyles(out),
		cancelGrace: execution.DefaultCancelGrace,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.canvas == nil {
		a.canvas = raster.New(registry)
	}
	a.loader = loader.New(loader.WithLogger(a.logger))
	return a
}

// Canvas returns the raster surface the app draws on.
func (a *App) Canvas() *raster.Canvas {
	return a.canvas
}

// History returns the recorded layouts.
func (a *App) History() *history.History {
	return a.history
}

// Types returns the registered app type names.
func (a *App) Types() []string {
	return a.registry.Names()
}

// LoadDocument reads a document from path.
func (a *App) LoadDocument(path string) (*config.Document, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return doc, nil
}

// Plan builds the plan the first reconciliation of doc would run. Nothing
// is executed.
func (a *App) Plan(doc *config.Document) (*plan.Plan, error) {
	s, err := doc.NewState()
	if err != nil {
		return nil, err
	}
	return a.planner().Build(s), nil
}

// Render reconciles the first document, then applies each following
// document to the same state and reconciles again, so later documents
// redraw only what they change. When output is not empty the final frame
// is written there as a PNG.
//
// A cycle that completes with failed steps, such as a failed validation,
// does not stop the run; its errors are joined into the returned error.
func (a *App) Render(ctx context.Context, output string, docs ...*config.Document) ([]reconcile.Cycle, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	s, err := docs[0].NewState()
	if err != nil {
		return nil, err
	}

	session, err := reconcile.NewSession(a.planner(), a.executor(), s, reconcile.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	defer session.Close()

	cycles := make([]reconcile.Cycle, 0, len(docs))
	var stepErrs []error
	for i, doc := range docs {
		if i > 0 {
			if err := doc.Apply(s); err != nil {
				return cycles, fmt.Errorf("document %d: %w", i+1, err)
			}
		}

		cycle, err := session.Reconcile(ctx)
		cycles = append(cycles, cycle)
		if err != nil {
			if session.Phase() == reconcile.PhaseFailed {
				return cycles, err
			}
			stepErrs = append(stepErrs, err)
		}
	}

	if output != "" && !a.dryRun {
		if err := a.canvas.SavePNG(output); err != nil {
			return cycles, fmt.Errorf("failed to write %s: %w", output, err)
		}
		a.logger.Info(ctx, "frame written", ports.F("path", output), ports.F("frames", a.canvas.Frames()))
	}

	return cycles, errors.Join(stepErrs...)
}

func (a *App) planner() *planner.Planner {
	return planner.NewPlanner(a.registry, planner.Collaborators{
		Loader:    a.loader,
		Analyzer:  dataset.NewAnalyzer(),
		Validator: validate.NewValidator(a.registry).WithLogger(a.logger),
		Surface:   a.canvas,
		Layout:    a.canvas,
		History:   a.history,
		Renderer:  a.canvas,
	})
}

func (a *App) executor() *execution.Executor {
	e := execution.NewExecutor().
		WithLogger(a.logger).
		WithMiddleware(execution.Timing(a.logger)).
		WithDryRun(a.dryRun).
		WithCancelGrace(a.cancelGrace)
	if a.progress != nil {
		e = e.WithProgress(a.progress)
	}
	return e
}

// PrintPlan outputs a human-readable plan summary.
func (a *App) PrintPlan(p *plan.Plan) {
	summary := p.Summary()

	a.printf("\n%s\n", a.styles.title.Render("Redraw Plan"))
	a.printf("===========\n\n")

	a.printf("Steps: %d total, %d async, %d guarded\n\n",
		summary.Total, summary.Async, summary.Guarded)

	for _, step := range p.Steps() {
		marker := "+"
		switch {
		case step.Wait():
			marker = "~"
		case step.Guarded():
			marker = "?"
		}
		a.printf("  %s %s  %s\n", marker, a.styles.step.Render(step.ID().String()),
			a.styles.muted.Render(step.Message()))
	}

	a.printf("\nRun 'redraw render' to execute this plan.\n")
}

// PrintResult outputs the step results of one cycle.
func (a *App) PrintResult(cycle reconcile.Cycle) {
	a.printf("\n%s\n", a.styles.title.Render(fmt.Sprintf("Cycle %d", cycle.Generation)))
	a.printf("=======\n\n")

	var done, failed, skipped, cancelled int
	for _, r := range cycle.Result.Steps {
		status := a.styles.status(r.Status())
		switch r.Status() {
		case plan.StatusDone:
			done++
			a.printf("  %s %s %s\n", status, r.StepID().String(), a.styles.muted.Render(r.Duration().String()))
		case plan.StatusFailed:
			failed++
			a.printf("  %s %s: %v\n", status, r.StepID().String(), r.Error())
		case plan.StatusSkipped:
			skipped++
			a.printf("  %s %s (skipped)\n", status, r.StepID().String())
		case plan.StatusCancelled:
			cancelled++
			a.printf("  %s %s (cancelled)\n", status, r.StepID().String())
		case plan.StatusPending:
			a.printf("  %s %s (pending)\n", status, r.StepID().String())
		}
	}

	a.printf("\nSummary: %d done, %d failed, %d skipped, %d cancelled in %s\n",
		done, failed, skipped, cancelled, cycle.Duration.Round(time.Microsecond))
}

// PrintTypes lists the registered app types with their names in the given
// locale.
func (a *App) PrintTypes(tag string) error {
	bundle, err := locale.Lookup(tag)
	if err != nil {
		return config.NewLocaleUnknownError(tag, locale.Available(), err)
	}
	for _, name := range a.registry.Names() {
		desc, _ := a.registry.Lookup(name)
		reqs := make([]string, 0, len(desc.Requirements))
		for _, c := range desc.Requirements {
			reqs = append(reqs, string(c))
		}
		a.printf("  %-10s %-20s %s\n", name, bundle.AppName(name), a.styles.muted.Render(fmt.Sprint(reqs)))
	}
	return nil
}

// printf is a helper that writes to the output writer, ignoring errors.
func (a *App) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
