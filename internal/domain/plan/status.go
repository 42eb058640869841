package plan

// Status is the outcome of executing a step.
type Status string

const (
	// StatusPending indicates the step has not run.
	StatusPending Status = "pending"
	// StatusDone indicates the step ran to completion.
	StatusDone Status = "done"
	// StatusSkipped indicates the step did not run: its check was false,
	// an earlier load failed, or the run was dry.
	StatusSkipped Status = "skipped"
	// StatusFailed indicates the step's action reported an error.
	StatusFailed Status = "failed"
	// StatusCancelled indicates the run was cancelled before or during the step.
	StatusCancelled Status = "cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDone, StatusSkipped, StatusFailed, StatusCancelled:
		return true
	case StatusPending:
		return false
	}
	return false
}

// Symbol returns the one-character marker used in plan and result listings.
func (s Status) Symbol() string {
	switch s {
	case StatusDone:
		return "✓"
	case StatusSkipped:
		return "-"
	case StatusFailed:
		return "✗"
	case StatusCancelled:
		return "!"
	default:
		return "•"
	}
}
