// Package raster draws visualisations onto an in-memory raster surface and
// encodes the result as PNG.
package raster

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/felixgeelhaar/redraw/internal/domain/apptype"
	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

// ErrNotInitialized is returned when drawing before the surface exists.
var ErrNotInitialized = errors.New("surface not initialized")

// DefaultBackground is the surface fill colour.
const DefaultBackground = "#ffffff"

// Canvas implements the surface, layout and renderer collaborators on a
// single raster context. Layout drawing is queued and applied on Commit;
// shapes are drawn directly after that.
type Canvas struct {
	mu sync.Mutex

	registry   *apptype.Registry
	background string
	face       text.Face
	fontSize   float64

	dc       *gg.Context
	groups   map[string]state.Group
	tooltips map[string]string
	widgets  map[ports.Widget]ports.Extent
	queue    []func(*gg.Context) error
	frames   int
}

var (
	_ ports.Surface  = (*Canvas)(nil)
	_ ports.Layout   = (*Canvas)(nil)
	_ ports.Renderer = (*Canvas)(nil)
)

// Option configures a Canvas.
type Option func(*Canvas)

// WithBackground sets the background colour as a hex string.
func WithBackground(hex string) Option {
	return func(c *Canvas) {
		c.background = hex
	}
}

// WithFace sets the font face used for titles and messages. Without one,
// text is laid out but not drawn.
func WithFace(face text.Face, size float64) Option {
	return func(c *Canvas) {
		c.face = face
		c.fontSize = size
	}
}

// New creates a Canvas that draws the types in registry.
func New(registry *apptype.Registry, opts ...Option) *Canvas {
	if registry == nil {
		registry = apptype.NewRegistry()
	}
	c := &Canvas{
		registry:   registry,
		background: DefaultBackground,
		fontSize:   defaultFontSize,
		groups:     make(map[string]state.Group),
		tooltips:   make(map[string]string),
		widgets:    make(map[ports.Widget]ports.Extent),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadFont loads a TrueType or OpenType font for text drawing.
func LoadFont(path string, size float64) (Option, error) {
	src, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return nil, err
	}
	return WithFace(src.Face(size), size), nil
}

// Init creates the root surface sized to the state.
func (c *Canvas) Init(s *state.State) error {
	w, h := int(s.Width.Value), int(s.Height.Value)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", w, h)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dc != nil {
		_ = c.dc.Close()
	}
	c.dc = gg.NewContext(w, h)
	c.dc.ClearWithColor(gg.Hex(c.background))
	c.queue = nil
	s.G.Root = true
	return nil
}

// CreateGroup registers the drawing group of an app type.
func (c *Canvas) CreateGroup(_ *state.State, appType string) (state.Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := state.Group{ID: "g-" + appType}
	c.groups[appType] = g
	return g, nil
}

// RemoveTooltip drops the tooltip bound to the app type.
func (c *Canvas) RemoveTooltip(appType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tooltips, appType)
}

// Tooltip returns the id the app type's tooltip is bound to.
func (c *Canvas) Tooltip(appType string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.tooltips[appType]
	return id, ok
}

// Commit clears the surface and applies the queued layout drawing. A
// layout-only pass redraws no shapes, so it keeps the last frame and drops
// the queue.
func (c *Canvas) Commit(s *state.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dc == nil {
		return ErrNotInitialized
	}
	queue := c.queue
	c.queue = nil
	if !s.Draw.Update {
		return nil
	}
	c.dc.ClearWithColor(gg.Hex(c.background))
	for _, op := range queue {
		if err := op(c.dc); err != nil {
			return err
		}
	}
	return nil
}

func (c *Canvas) enqueue(op func(*gg.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, op)
}

// Frames returns the number of completed frames.
func (c *Canvas) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// PNG encodes the surface.
func (c *Canvas) PNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dc == nil {
		return ErrNotInitialized
	}
	return c.dc.EncodePNG(w)
}

// SavePNG writes the surface to path, creating parent directories.
func (c *Canvas) SavePNG(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := c.PNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
