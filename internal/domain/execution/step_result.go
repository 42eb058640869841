// Package execution runs plans against the visualisation state.
package execution

import (
	"time"

	"github.com/felixgeelhaar/redraw/internal/domain/plan"
)

// StepResult captures the outcome of executing a single step.
type StepResult struct {
	stepID   plan.StepID
	status   plan.Status
	err      error
	duration time.Duration
	message  string
}

// NewStepResult creates a new StepResult.
func NewStepResult(stepID plan.StepID, status plan.Status, err error) StepResult {
	return StepResult{
		stepID: stepID,
		status: status,
		err:    err,
	}
}

// StepID returns the ID of the step that was executed.
func (r StepResult) StepID() plan.StepID {
	return r.stepID
}

// Status returns the final status of the step.
func (r StepResult) Status() plan.Status {
	return r.status
}

// Error returns any error that occurred during execution.
func (r StepResult) Error() error {
	return r.err
}

// Duration returns how long the step took to execute.
func (r StepResult) Duration() time.Duration {
	return r.duration
}

// Message returns the progress message of the step.
func (r StepResult) Message() string {
	return r.message
}

// Success returns true if the step ran to completion.
func (r StepResult) Success() bool {
	return r.status == plan.StatusDone
}

// Skipped returns true if the step was skipped.
func (r StepResult) Skipped() bool {
	return r.status == plan.StatusSkipped
}

// WithDuration returns a new StepResult with duration set.
func (r StepResult) WithDuration(d time.Duration) StepResult {
	r.duration = d
	return r
}

// WithMessage returns a new StepResult with message set.
func (r StepResult) WithMessage(msg string) StepResult {
	r.message = msg
	return r
}
