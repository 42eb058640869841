// Package reconcile drives repeated plan-and-execute cycles over one
// visualisation state.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/redraw/internal/domain/execution"
	"github.com/felixgeelhaar/redraw/internal/domain/plan"
	"github.com/felixgeelhaar/redraw/internal/domain/planner"
	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// Phase is the lifecycle position of a session.
type Phase string

const (
	// PhaseIdle indicates no cycle is running.
	PhaseIdle Phase = "idle"
	// PhasePlanning indicates a plan is being built.
	PhasePlanning Phase = "planning"
	// PhaseExecuting indicates a plan is running.
	PhaseExecuting Phase = "executing"
	// PhaseFailed indicates the last cycle failed.
	PhaseFailed Phase = "failed"
)

// Event types for the session state machine.
const (
	EventPlan      = "PLAN"
	EventExecute   = "EXECUTE"
	EventComplete  = "COMPLETE"
	EventFail      = "FAIL"
	EventSupersede = "SUPERSEDE"
)

// ErrSuperseded is returned by a cycle that was replaced by a newer one
// before it finished. Its changed flags are left for the newer cycle.
var ErrSuperseded = &plan.StepError{
	Code:       plan.ErrCodeSuperseded,
	Message:    "cycle superseded by a newer one",
	Suggestion: "Nothing to do; the newer cycle applies the latest state.",
}

// Cycle is the record of one reconciliation.
type Cycle struct {
	ID         string
	Generation uint64
	Plan       *plan.Plan
	Result     execution.Result
	Duration   time.Duration
}

// machineContext is the statekit context of a session. Counters live on
// the Session itself.
type machineContext struct{}

// Session owns the reconciliation of one state. Cycles never overlap: a new
// Reconcile cancels the running one and waits for it to unwind.
type Session struct {
	planner  *planner.Planner
	executor *execution.Executor
	state    *state.State
	logger   ports.Logger

	runMu sync.Mutex

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	interp     *statekit.Interpreter[machineContext]
	completed  int
	lastErr    error
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger ports.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session over st.
func NewSession(p *planner.Planner, e *execution.Executor, st *state.State, opts ...Option) (*Session, error) {
	if p == nil || e == nil || st == nil {
		return nil, fmt.Errorf("planner, executor and state are required")
	}

	s := &Session{planner: p, executor: e, state: st}
	for _, opt := range opts {
		opt(s)
	}

	interp, err := s.buildMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to build state machine: %w", err)
	}
	s.interp = interp
	s.interp.Start()
	return s, nil
}

// buildMachine constructs the session lifecycle using statekit. The error
// action writes through the captured session pointer.
func (s *Session) buildMachine() (*statekit.Interpreter[machineContext], error) {
	machine, err := statekit.NewMachine[machineContext]("redraw-session").
		WithInitial(statekit.StateID(PhaseIdle)).
		WithContext(machineContext{}).
		WithAction("recordError", func(_ *machineContext, event statekit.Event) {
			if payload, ok := event.Payload.(map[string]interface{}); ok {
				if err, ok := payload["error"].(error); ok {
					s.lastErr = err
				}
			}
		}).
		State(statekit.StateID(PhaseIdle)).
		On(EventPlan).Target(statekit.StateID(PhasePlanning)).Done().
		State(statekit.StateID(PhasePlanning)).
		On(EventExecute).Target(statekit.StateID(PhaseExecuting)).
		On(EventSupersede).Target(statekit.StateID(PhaseIdle)).Done().
		State(statekit.StateID(PhaseExecuting)).
		On(EventComplete).Target(statekit.StateID(PhaseIdle)).
		On(EventFail).Target(statekit.StateID(PhaseFailed)).
		On(EventSupersede).Target(statekit.StateID(PhaseIdle)).Done().
		State(statekit.StateID(PhaseFailed)).
		OnEntry("recordError").
		On(EventPlan).Target(statekit.StateID(PhasePlanning)).Done().
		Build()
	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}

func (s *Session) send(eventType string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interp == nil {
		return
	}
	ev := statekit.Event{Type: statekit.EventType(eventType)}
	if err != nil {
		ev.Payload = map[string]interface{}{"error": err}
	}
	s.interp.Send(ev)
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interp == nil {
		return PhaseIdle
	}
	return Phase(s.interp.State().Value)
}

// Generation returns the number of cycles started.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Completed returns the number of cycles that finished successfully.
func (s *Session) Completed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// LastError returns the error of the last failed cycle.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// State returns the reconciled state. It must not be modified while a
// cycle is running.
func (s *Session) State() *state.State {
	return s.state
}

// Close cancels any running cycle and stops the state machine.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	if s.interp != nil {
		s.interp.Stop()
		s.interp = nil
	}
}

func (s *Session) begin(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return s.generation, ctx, cancel
}

func (s *Session) current(gen uint64) bool {
	return s.Generation() == gen
}

// Reconcile plans and executes one cycle. On success the changed flags are
// cleared. Non-fatal step failures, such as a failed validation, are
// returned alongside the completed cycle. A cycle replaced by a newer call
// returns ErrSuperseded.
func (s *Session) Reconcile(ctx context.Context) (Cycle, error) {
	gen, runCtx, cancel := s.begin(ctx)
	defer cancel()

	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.current(gen) {
		return Cycle{Generation: gen}, ErrSuperseded
	}

	start := time.Now()
	cycle := Cycle{ID: uuid.NewString(), Generation: gen}
	log := s.log(runCtx).With(ports.F("cycle_id", cycle.ID), ports.F("generation", gen))

	s.send(EventPlan, nil)
	cycle.Plan = s.planner.Build(s.state)
	log.Debug(runCtx, "plan built", ports.F("plan_id", cycle.Plan.ID()), ports.F("steps", cycle.Plan.Len()))

	s.send(EventExecute, nil)
	result, err := s.executor.Execute(runCtx, cycle.Plan, s.state)
	cycle.Result = result
	cycle.Duration = time.Since(start)

	if !s.current(gen) {
		s.send(EventSupersede, nil)
		log.Warn(runCtx, "cycle superseded")
		return cycle, ErrSuperseded
	}
	if err != nil {
		s.send(EventFail, err)
		log.Error(runCtx, "cycle cancelled", ports.Err(err))
		return cycle, err
	}
	if result.Aborted {
		err := result.Err()
		s.send(EventFail, err)
		log.Error(runCtx, "cycle aborted", ports.Err(err))
		return cycle, err
	}

	s.state.ClearChanged()
	s.send(EventComplete, nil)
	s.mu.Lock()
	s.completed++
	s.lastErr = nil
	s.mu.Unlock()

	stepErr := result.Err()
	if stepErr != nil {
		log.Warn(runCtx, "cycle completed with failures", ports.Err(stepErr))
	} else {
		log.Info(runCtx, "cycle completed",
			ports.F("steps", cycle.Plan.Len()),
			ports.F("duration", cycle.Duration))
	}
	return cycle, stepErr
}

func (s *Session) log(ctx context.Context) ports.Logger {
	if s.logger != nil {
		return s.logger
	}
	if l := ports.LoggerFromContext(ctx); l != nil {
		return l
	}
	return ports.NewNopLogger()
}

// IsSuperseded reports whether err marks a replaced cycle.
func IsSuperseded(err error) bool {
	var stepErr *plan.StepError
	return errors.As(err, &stepErr) && stepErr.Code == plan.ErrCodeSuperseded
}
