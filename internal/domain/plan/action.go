package plan

import (
	"context"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
)

// Op is a synchronous unit of work over the state.
type Op func(ctx context.Context, s *state.State) error

// Apply is a state change carried by an asynchronous completion.
type Apply func(s *state.State)

// Done signals completion of an asynchronous operation. It must be called
// exactly once, with nil on success. The apply functions of a successful
// completion are run by the executor on its own goroutine, and only when it
// accepts the completion; a completion discarded after the cancel grace
// never touches the state.
type Done func(err error, apply ...Apply)

// AsyncOp is an operation that completes by calling done, possibly from
// another goroutine.
type AsyncOp func(ctx context.Context, s *state.State, done Done)

// ActionKind discriminates the Action variants.
type ActionKind int

const (
	// ActionSingle runs one synchronous operation.
	ActionSingle ActionKind = iota
	// ActionSequence runs several synchronous operations back to back.
	ActionSequence
	// ActionAsync runs one operation that signals completion through Done.
	ActionAsync
)

// String returns the kind name.
func (k ActionKind) String() string {
	switch k {
	case ActionSingle:
		return "single"
	case ActionSequence:
		return "sequence"
	case ActionAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Action is the work a step performs.
type Action struct {
	kind  ActionKind
	ops   []Op
	async AsyncOp
}

// Single wraps one operation.
func Single(op Op) Action {
	return Action{kind: ActionSingle, ops: []Op{op}}
}

// Sequence wraps operations that run in order within one step.
func Sequence(ops ...Op) Action {
	return Action{kind: ActionSequence, ops: ops}
}

// Async wraps an operation that completes through a callback.
func Async(op AsyncOp) Action {
	return Action{kind: ActionAsync, async: op}
}

// Kind returns the variant.
func (a Action) Kind() ActionKind {
	return a.kind
}

// Len returns the number of operations in the action.
func (a Action) Len() int {
	if a.kind == ActionAsync {
		return 1
	}
	return len(a.ops)
}

// Run executes the action and reports the outcome through done. Synchronous
// variants call done before returning; a sequence stops at the first error.
func (a Action) Run(ctx context.Context, s *state.State, done Done) {
	if a.kind == ActionAsync {
		if a.async == nil {
			done(nil)
			return
		}
		a.async(ctx, s, done)
		return
	}
	for _, op := range a.ops {
		if op == nil {
			continue
		}
		if err := op(ctx, s); err != nil {
			done(err)
			return
		}
	}
	done(nil)
}
