// Package apptype provides the registry of visualisation types.
package apptype

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"sync"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
)

// Capability is a data shape an app type needs.
type Capability string

// Known capabilities.
const (
	CapData   Capability = "data"
	CapNodes  Capability = "nodes"
	CapEdges  Capability = "edges"
	CapCoords Capability = "coords"
)

// Errors for registry operations.
var (
	ErrInvalidName   = errors.New("app type name invalid: must be lowercase alphanumeric with underscores")
	ErrDuplicateType = errors.New("app type already registered")
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// SetupFunc runs once per cycle before any data work for its type.
type SetupFunc func(ctx context.Context, s *state.State) error

// DrawFunc computes the shapes for the current render dataset.
type DrawFunc func(s *state.State) []state.Shape

// Descriptor describes one app type.
type Descriptor struct {
	Name         string
	Setup        SetupFunc
	Requirements []Capability
	Draw         DrawFunc
}

// Requires reports whether the type needs the given capability.
func (d Descriptor) Requires(c Capability) bool {
	return slices.Contains(d.Requirements, c)
}

// Registry maps type names to descriptors. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Descriptor)}
}

// NewDefaultRegistry creates a registry holding the built-in types.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range Builtins() {
		r.MustRegister(d)
	}
	return r
}

// Register adds a descriptor.
func (r *Registry) Register(d Descriptor) error {
	if !namePattern.MatchString(d.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[d.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, d.Name)
	}
	r.types[d.Name] = d
	return nil
}

// MustRegister adds a descriptor, panicking on error.
// Use this for descriptors known at compile time.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor for name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[name]
	return d, ok
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
