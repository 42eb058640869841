// Package history keeps a browsing history of rendered layouts.
package history

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 100

// Margin is the resolved margin set of an entry.
type Margin struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// Entry is one recorded layout.
type Entry struct {
	ID        string    `yaml:"id"`
	CreatedAt time.Time `yaml:"created_at"`
	Type      string    `yaml:"type"`
	Margin    Margin    `yaml:"margin"`
	Width     float64   `yaml:"width"`
	Height    float64   `yaml:"height"`
	Groups    []string  `yaml:"groups,omitempty"`
}

// sameLayout reports whether two entries describe the same layout.
func (e Entry) sameLayout(o Entry) bool {
	return e.Type == o.Type && e.Margin == o.Margin &&
		e.Width == o.Width && e.Height == o.Height &&
		slices.Equal(e.Groups, o.Groups)
}

// History implements ports.History. It is safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
	now     func() time.Time
}

var _ ports.History = (*History)(nil)

// Option configures a History.
type Option func(*History)

// WithLimit caps the number of entries kept; the oldest are dropped first.
func WithLimit(n int) Option {
	return func(h *History) {
		h.limit = n
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		h.now = now
	}
}

// New creates an empty History.
func New(opts ...Option) *History {
	h := &History{limit: DefaultLimit, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Record pushes the state's current layout unless it matches the last
// entry.
func (h *History) Record(ctx context.Context, s *state.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.Snapshot()
	var groups []string
	for name := range snap.Groups {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	e := Entry{
		Type:   snap.Type,
		Margin: Margin(snap.Margin),
		Width:  snap.Width,
		Height: snap.Height,
		Groups: groups,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1].sameLayout(e) {
		return nil
	}
	e.ID = uuid.New().String()
	e.CreatedAt = h.now().UTC()
	h.entries = append(h.entries, e)
	if h.limit > 0 && len(h.entries) > h.limit {
		h.entries = slices.Delete(h.entries, 0, len(h.entries)-h.limit)
	}
	return nil
}

// Entries returns a copy of the recorded entries, oldest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.entries)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Last returns the most recent entry.
func (h *History) Last() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

type document struct {
	Version int     `yaml:"version"`
	Entries []Entry `yaml:"entries"`
}

// Export writes the entries as YAML.
func (h *History) Export(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(document{Version: 1, Entries: h.Entries()}); err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return enc.Close()
}

// Save writes the entries to path, creating parent directories.
func (h *History) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}
	if err := h.Export(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Import replaces the entries with those read from r.
func (h *History) Import(r io.Reader) error {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode history: %w", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = doc.Entries
	return nil
}
