package plan

import "github.com/felixgeelhaar/redraw/internal/domain/state"

// Check is a guard evaluated by the executor immediately before a step runs.
type Check func(s *state.State) bool

// Step is one immutable plan entry.
type Step struct {
	id      StepID
	action  Action
	message string
	check   Check
}

// NewStep creates a Step.
func NewStep(id StepID, action Action, message string) Step {
	return Step{
		id:      id,
		action:  action,
		message: message,
	}
}

// WithCheck returns a copy of the step guarded by check.
func (s Step) WithCheck(check Check) Step {
	s.check = check
	return s
}

// ID returns the step identifier.
func (s Step) ID() StepID {
	return s.id
}

// Action returns the work the step performs.
func (s Step) Action() Action {
	return s.action
}

// Message returns the human-readable progress message.
func (s Step) Message() string {
	return s.message
}

// Wait reports whether the executor must suspend until the action signals
// completion.
func (s Step) Wait() bool {
	return s.action.kind == ActionAsync
}

// Guarded reports whether the step carries a check.
func (s Step) Guarded() bool {
	return s.check != nil
}

// ShouldRun evaluates the check against the current state. Unguarded steps
// always run.
func (s Step) ShouldRun(st *state.State) bool {
	return s.check == nil || s.check(st)
}
