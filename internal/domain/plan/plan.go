// Package plan defines the ordered step list produced for one
// reconciliation cycle.
package plan

import "github.com/google/uuid"

// Summary provides aggregate statistics about a plan.
type Summary struct {
	Total     int
	Async     int
	Guarded   int
	Sequences int
}

// Plan is the ordered list of steps for one cycle. Order is significant and
// is never changed after a step is added.
type Plan struct {
	id    string
	steps []Step
}

// New creates an empty Plan with a fresh identifier.
func New() *Plan {
	return &Plan{
		id:    uuid.NewString(),
		steps: make([]Step, 0),
	}
}

// ID returns the plan identifier.
func (p *Plan) ID() string {
	return p.id
}

// Add appends a step.
func (p *Plan) Add(step Step) {
	p.steps = append(p.steps, step)
}

// Len returns the number of steps.
func (p *Plan) Len() int {
	return len(p.steps)
}

// IsEmpty returns true if there are no steps.
func (p *Plan) IsEmpty() bool {
	return len(p.steps) == 0
}

// Steps returns all steps in order.
func (p *Plan) Steps() []Step {
	return p.steps
}

// IDs returns the step identifiers in order.
func (p *Plan) IDs() []string {
	ids := make([]string, len(p.steps))
	for i, s := range p.steps {
		ids[i] = s.ID().String()
	}
	return ids
}

// Index returns the position of the first step with id, or -1.
func (p *Plan) Index(id string) int {
	for i, s := range p.steps {
		if s.ID().String() == id {
			return i
		}
	}
	return -1
}

// Has reports whether a step with id is present.
func (p *Plan) Has(id string) bool {
	return p.Index(id) >= 0
}

// Find returns the first step with id.
func (p *Plan) Find(id string) (Step, bool) {
	if i := p.Index(id); i >= 0 {
		return p.steps[i], true
	}
	return Step{}, false
}

// Summary returns aggregate statistics.
func (p *Plan) Summary() Summary {
	summary := Summary{Total: len(p.steps)}
	for _, s := range p.steps {
		if s.Wait() {
			summary.Async++
		}
		if s.Guarded() {
			summary.Guarded++
		}
		if s.Action().Kind() == ActionSequence {
			summary.Sequences++
		}
	}
	return summary
}
