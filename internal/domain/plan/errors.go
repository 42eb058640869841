package plan

import (
	"fmt"
	"strings"
)

// Error codes for step execution.
const (
	ErrCodeLoadFailed       = "LOAD_FAILED"
	ErrCodeStepFailed       = "STEP_FAILED"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeCancelled        = "CANCELLED"
	ErrCodeSuperseded       = "SUPERSEDED"
)

// StepError is a step failure with an actionable suggestion.
type StepError struct {
	Code       string // Error code for categorization
	Message    string // User-friendly error message
	StepID     string // Step ID if applicable
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	msg := e.Message
	if e.StepID != "" {
		msg = fmt.Sprintf("step %q: %s", e.StepID, e.Message)
	}
	if e.Underlying != nil {
		msg += ": " + e.Underlying.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.StepID != "" {
		fmt.Fprintf(&b, "\n  Step: %s", e.StepID)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Underlying != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Underlying.Error())
	}

	return b.String()
}

// NewLoadFailedError creates an error for a failed remote load.
func NewLoadFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeLoadFailed,
		Message:    "data source could not be loaded",
		StepID:     stepID,
		Suggestion: "Check that the URL or file path is reachable and in a supported format (json, csv, yaml, toml, ini).",
		Underlying: err,
	}
}

// NewStepFailedError creates an error for a failed step action.
func NewStepFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeStepFailed,
		Message:    "step failed",
		StepID:     stepID,
		Underlying: err,
	}
}

// NewValidationFailedError creates an error for a failed consistency check.
func NewValidationFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeValidationFailed,
		Message:    "visualization configuration is inconsistent",
		StepID:     stepID,
		Suggestion: "Fix the reported fields; drawing continues with what is available.",
		Underlying: err,
	}
}

// NewCancelledError creates an error for a cancelled run.
func NewCancelledError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeCancelled,
		Message:    "run cancelled",
		StepID:     stepID,
		Underlying: err,
	}
}
