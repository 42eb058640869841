package raster

import (
	"github.com/gogpu/gg"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
)

const (
	defaultShapeColor = "#4c78a8"
	focusColor        = "#e45756"
	errorColor        = "#c0392b"
)

// FocusTooltip binds the app type's tooltip to the focused id.
func (c *Canvas) FocusTooltip(s *state.State) error {
	if s.Focus.Value == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tooltips[s.Type.Value] = s.Focus.Value
	return nil
}

// DrawType computes the shapes of the active app type.
func (c *Canvas) DrawType(s *state.State) error {
	desc, ok := c.registry.Lookup(s.Type.Value)
	if !ok || desc.Draw == nil {
		s.Shapes = nil
		return nil
	}
	s.Shapes = desc.Draw(s)
	return nil
}

// DrawShapes draws the computed shapes inside the viewport. When
// validation recorded an error message, the message is drawn instead.
func (c *Canvas) DrawShapes(s *state.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dc == nil {
		return ErrNotInitialized
	}
	dc := c.dc

	if s.Error.Message != "" {
		return c.drawError(dc, s)
	}

	dc.Push()
	defer dc.Pop()
	dc.Translate(s.Margin.Left, s.Margin.Top)

	for _, sh := range s.Shapes {
		if err := drawShape(dc, sh); err != nil {
			return err
		}
	}
	return nil
}

func drawShape(dc *gg.Context, sh state.Shape) error {
	color := sh.Color
	if color == "" {
		color = defaultShapeColor
	}
	dc.SetHexColor(color)

	switch sh.Kind {
	case state.ShapeCircle:
		dc.DrawCircle(sh.X, sh.Y, sh.R)
		return dc.Fill()
	case state.ShapeRect:
		dc.DrawRectangle(sh.X, sh.Y, sh.W, sh.H)
		return dc.Fill()
	case state.ShapeLine:
		dc.SetLineWidth(1.5)
		dc.DrawLine(sh.X, sh.Y, sh.X2, sh.Y2)
		return dc.Stroke()
	}
	return nil
}

func (c *Canvas) drawError(dc *gg.Context, s *state.State) error {
	dc.SetHexColor(errorColor)
	dc.SetLineWidth(2)
	dc.DrawRectangle(s.Margin.Left+1, s.Margin.Top+1, s.Width.Viz-2, s.Height.Viz-2)
	if err := dc.Stroke(); err != nil {
		return err
	}
	c.drawString(dc, s.Error.Message, s.Margin.Left+titleGap, s.Margin.Top+s.Height.Viz/2)
	return nil
}

// FocusViz outlines the shapes whose id is focused.
func (c *Canvas) FocusViz(s *state.State) error {
	if s.Focus.Value == "" || s.Error.Message != "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dc == nil {
		return ErrNotInitialized
	}
	dc := c.dc
	dc.Push()
	defer dc.Pop()
	dc.Translate(s.Margin.Left, s.Margin.Top)
	dc.SetHexColor(focusColor)
	dc.SetLineWidth(2)

	for _, sh := range s.Shapes {
		if sh.ID != s.Focus.Value {
			continue
		}
		switch sh.Kind {
		case state.ShapeCircle:
			dc.DrawCircle(sh.X, sh.Y, sh.R+2)
		case state.ShapeRect:
			dc.DrawRectangle(sh.X-1, sh.Y-1, sh.W+2, sh.H+2)
		default:
			continue
		}
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// Finish reveals the active type's group, hides the others and completes
// the frame.
func (c *Canvas) Finish(s *state.State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for appType, g := range s.G.Apps {
		if appType == s.Type.Value {
			g.Opacity = 1
		} else {
			g.Opacity = 0
		}
		s.G.Apps[appType] = g
	}
	c.frames++
	return nil
}
