package execution

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/felixgeelhaar/redraw/internal/domain/plan"
	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// DefaultCancelGrace bounds how long a cancelled run waits for an
// outstanding asynchronous step to report completion.
const DefaultCancelGrace = 5 * time.Second

// Runner executes one step against the state.
type Runner func(ctx context.Context, step plan.Step, s *state.State) error

// Middleware wraps a Runner.
type Middleware func(next Runner) Runner

// Progress describes the step about to run.
type Progress struct {
	Index   int
	Total   int
	StepID  plan.StepID
	Message string
}

// ProgressFunc receives progress notifications.
type ProgressFunc func(Progress)

// Executor runs the steps of a Plan strictly in order.
type Executor struct {
	logger             ports.Logger
	dryRun             bool
	abortOnLoadFailure bool
	progress           ProgressFunc
	middleware         []Middleware
	cancelGrace        time.Duration
}

// NewExecutor creates a new Executor. A failed load skips the remaining
// steps unless configured otherwise.
func NewExecutor() *Executor {
	return &Executor{
		abortOnLoadFailure: true,
		cancelGrace:        DefaultCancelGrace,
	}
}

func (e *Executor) clone() *Executor {
	c := *e
	c.middleware = append([]Middleware(nil), e.middleware...)
	return &c
}

// WithLogger returns an Executor that logs through logger.
func (e *Executor) WithLogger(logger ports.Logger) *Executor {
	c := e.clone()
	c.logger = logger
	return c
}

// WithDryRun returns an Executor that evaluates checks and reports every
// step as skipped without running any action.
func (e *Executor) WithDryRun(dryRun bool) *Executor {
	c := e.clone()
	c.dryRun = dryRun
	return c
}

// WithAbortOnLoadFailure returns an Executor that skips the rest of the plan
// after a waiting step fails.
func (e *Executor) WithAbortOnLoadFailure(abort bool) *Executor {
	c := e.clone()
	c.abortOnLoadFailure = abort
	return c
}

// WithProgress returns an Executor that reports each step before it runs.
func (e *Executor) WithProgress(fn ProgressFunc) *Executor {
	c := e.clone()
	c.progress = fn
	return c
}

// WithMiddleware returns an Executor that wraps step execution. The first
// middleware is the outermost.
func (e *Executor) WithMiddleware(mw ...Middleware) *Executor {
	c := e.clone()
	c.middleware = append(c.middleware, mw...)
	return c
}

// WithCancelGrace returns an Executor that waits at most d for an
// asynchronous step to finish once the run is cancelled.
func (e *Executor) WithCancelGrace(d time.Duration) *Executor {
	c := e.clone()
	c.cancelGrace = d
	return c
}

// Result contains the outcome of a run.
type Result struct {
	PlanID    string
	Steps     []StepResult
	Cancelled bool
	Aborted   bool
}

// Failed returns the results of failed steps.
func (r Result) Failed() []StepResult {
	failed := make([]StepResult, 0)
	for _, s := range r.Steps {
		if s.Status() == plan.StatusFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// Err joins the errors of all failed steps, or returns nil.
func (r Result) Err() error {
	errs := make([]error, 0)
	for _, s := range r.Failed() {
		errs = append(errs, s.Error())
	}
	return errors.Join(errs...)
}

// Execute runs all steps of p in order. A step waits for its predecessor to
// complete, including asynchronous ones. Step failures are recorded in the
// result; the returned error is non-nil only when ctx is cancelled.
func (e *Executor) Execute(ctx context.Context, p *plan.Plan, s *state.State) (Result, error) {
	steps := p.Steps()
	result := Result{PlanID: p.ID(), Steps: make([]StepResult, 0, len(steps))}
	log := e.log(ctx)
	run := e.chain()

	if log != nil {
		log.Debug(ctx, "executing plan",
			ports.F("plan_id", p.ID()),
			ports.F("steps", len(steps)),
			ports.F("dry_run", e.dryRun))
	}

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			for _, rest := range steps[i:] {
				result.Steps = append(result.Steps,
					NewStepResult(rest.ID(), plan.StatusCancelled, nil).WithMessage(rest.Message()))
			}
			return result, plan.NewCancelledError(step.ID().String(), err)
		}

		if result.Aborted {
			result.Steps = append(result.Steps,
				NewStepResult(step.ID(), plan.StatusSkipped, nil).WithMessage(step.Message()))
			continue
		}

		if e.progress != nil {
			e.progress(Progress{Index: i, Total: len(steps), StepID: step.ID(), Message: step.Message()})
		}

		if !step.ShouldRun(s) || e.dryRun {
			result.Steps = append(result.Steps,
				NewStepResult(step.ID(), plan.StatusSkipped, nil).WithMessage(step.Message()))
			continue
		}

		start := time.Now()
		err := run(ctx, step, s)
		duration := time.Since(start)

		sr := e.resolve(ctx, step, err).WithDuration(duration).WithMessage(step.Message())
		result.Steps = append(result.Steps, sr)

		switch sr.Status() {
		case plan.StatusCancelled:
			result.Cancelled = true
			for _, rest := range steps[i+1:] {
				result.Steps = append(result.Steps,
					NewStepResult(rest.ID(), plan.StatusCancelled, nil).WithMessage(rest.Message()))
			}
			return result, plan.NewCancelledError(step.ID().String(), ctx.Err())
		case plan.StatusFailed:
			if log != nil {
				log.Warn(ctx, "step failed", ports.F("step", step.ID().String()), ports.Err(sr.Error()))
			}
			if step.Wait() && e.abortOnLoadFailure {
				result.Aborted = true
				if log != nil {
					log.Warn(ctx, "skipping remaining steps after failed load",
						ports.F("remaining", len(steps)-i-1))
				}
			}
		}
	}

	return result, nil
}

// resolve classifies the outcome of a step.
func (e *Executor) resolve(ctx context.Context, step plan.Step, err error) StepResult {
	if err == nil {
		return NewStepResult(step.ID(), plan.StatusDone, nil)
	}
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return NewStepResult(step.ID(), plan.StatusCancelled, err)
	}
	var stepErr *plan.StepError
	if !errors.As(err, &stepErr) {
		err = plan.NewStepFailedError(step.ID().String(), err)
	}
	return NewStepResult(step.ID(), plan.StatusFailed, err)
}

func (e *Executor) chain() Runner {
	run := e.runStep
	for i := len(e.middleware) - 1; i >= 0; i-- {
		run = e.middleware[i](run)
	}
	return run
}

// runStep runs the step's action and blocks until it signals completion.
// When ctx is cancelled mid-step, completion is awaited for the cancel
// grace; a completion arriving later is discarded.
func (e *Executor) runStep(ctx context.Context, step plan.Step, s *state.State) error {
	ch := make(chan completion, 1)
	var once sync.Once
	done := func(err error, apply ...plan.Apply) {
		once.Do(func() { ch <- completion{err: err, apply: apply} })
	}

	step.Action().Run(ctx, s, done)

	select {
	case c := <-ch:
		return c.settle(s)
	case <-ctx.Done():
	}

	timer := time.NewTimer(e.cancelGrace)
	defer timer.Stop()
	select {
	case c := <-ch:
		return c.settle(s)
	case <-timer.C:
		return ctx.Err()
	}
}

// completion is an accepted step outcome.
type completion struct {
	err   error
	apply []plan.Apply
}

// settle applies a successful completion to the state.
func (c completion) settle(s *state.State) error {
	if c.err != nil {
		return c.err
	}
	for _, fn := range c.apply {
		if fn != nil {
			fn(s)
		}
	}
	return nil
}

func (e *Executor) log(ctx context.Context) ports.Logger {
	if e.logger != nil {
		return e.logger
	}
	return ports.LoggerFromContext(ctx)
}

// Timing returns middleware that logs the duration of each step at debug
// level while the state is in development mode.
func Timing(logger ports.Logger) Middleware {
	return func(next Runner) Runner {
		return func(ctx context.Context, step plan.Step, s *state.State) error {
			if !s.Dev || logger == nil {
				return next(ctx, step, s)
			}
			start := time.Now()
			err := next(ctx, step, s)
			logger.Debug(ctx, "step timing",
				ports.F("step", step.ID().String()),
				ports.F("message", step.Message()),
				ports.F("duration", time.Since(start)))
			return err
		}
	}
}
