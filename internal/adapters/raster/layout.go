package raster

import (
	"fmt"

	"github.com/gogpu/gg"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
)

const (
	defaultFontSize = 14.0
	titleGap        = 8.0
	drawerHeight    = 24.0
	timelineHeight  = 36.0
	timelineGap     = 8.0
	legendHeight    = 18.0
	legendGap       = 6.0
	legendSteps     = 24
)

// lineHeight is the vertical space of one line of text at size.
func lineHeight(size float64) float64 {
	return size * 1.4
}

// Titles reserves space for the title and subtitle at the top and queues
// their drawing.
func (c *Canvas) Titles(s *state.State) {
	if s.Title.Value == "" && s.Title.Sub == "" {
		return
	}

	size := c.fontSize
	top := s.Margin.Top
	left := s.Margin.Left
	y := top + titleGap

	if s.Title.Value != "" {
		y += lineHeight(size)
		title, baseline := s.Title.Value, y
		c.enqueue(func(dc *gg.Context) error {
			dc.SetHexColor("#222222")
			c.drawString(dc, title, left+titleGap, baseline)
			return nil
		})
	}
	if s.Title.Sub != "" {
		y += lineHeight(size * 0.8)
		sub, baseline := s.Title.Sub, y
		c.enqueue(func(dc *gg.Context) error {
			dc.SetHexColor("#666666")
			c.drawString(dc, sub, left+titleGap, baseline)
			return nil
		})
	}
	s.Margin.Top = y + titleGap
}

func (c *Canvas) drawString(dc *gg.Context, str string, x, y float64) {
	if c.face == nil {
		return
	}
	dc.SetFont(c.face)
	dc.DrawString(str, x, y)
}

// DrawWidget queues a bottom widget and adds its extent to the bottom
// margin. Disabled widgets take no space.
func (c *Canvas) DrawWidget(s *state.State, w ports.Widget) error {
	var e ports.Extent
	switch w {
	case ports.WidgetDrawer:
		e = ports.Extent{Height: drawerHeight}
	case ports.WidgetTimeline:
		if s.Timeline.Value {
			e = ports.Extent{Y: timelineGap, Height: timelineHeight}
		}
	case ports.WidgetLegend:
		if s.Legend.Value {
			e = ports.Extent{Y: legendGap, Height: legendHeight}
		}
	default:
		return fmt.Errorf("unknown widget %q", w)
	}

	// Widgets stack upwards from the bottom edge in drawing order.
	bottom := s.Height.Value - s.Margin.Bottom - e.Y
	top := bottom - e.Height
	left, width := s.Margin.Left, s.Width.Value-s.Margin.Left-s.Margin.Right

	c.mu.Lock()
	c.widgets[w] = e
	c.mu.Unlock()

	if e.Height > 0 {
		var op func(*gg.Context) error
		switch w {
		case ports.WidgetDrawer:
			op = drawDrawer(left, top, width, e.Height)
		case ports.WidgetTimeline:
			op = drawTimeline(left, top, width, e.Height, s.Data.Nested.Times, s.Time.Selected)
		case ports.WidgetLegend:
			op = drawLegend(left, top, width, e.Height, s.Color.ValueScale)
		}
		c.enqueue(op)
	}

	s.Margin.Bottom += e.Y + e.Height
	return nil
}

// Measure returns the extent of the widget as last drawn.
func (c *Canvas) Measure(w ports.Widget) ports.Extent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.widgets[w]
}

func drawDrawer(x, y, w, h float64) func(*gg.Context) error {
	return func(dc *gg.Context) error {
		dc.SetHexColor("#f2f2f2")
		dc.DrawRectangle(x, y, w, h)
		return dc.Fill()
	}
}

func drawTimeline(x, y, w, h float64, times, selected []string) func(*gg.Context) error {
	return func(dc *gg.Context) error {
		mid := y + h/2
		dc.SetHexColor("#bbbbbb")
		dc.SetLineWidth(2)
		dc.DrawLine(x+titleGap, mid, x+w-titleGap, mid)
		if err := dc.Stroke(); err != nil {
			return err
		}
		if len(times) == 0 {
			return nil
		}

		step := 0.0
		if len(times) > 1 {
			step = (w - 2*titleGap) / float64(len(times)-1)
		}
		for i, t := range times {
			cx := x + titleGap + float64(i)*step
			dc.SetHexColor("#bbbbbb")
			r := 3.0
			for _, sel := range selected {
				if sel == t {
					dc.SetHexColor("#333333")
					r = 5
				}
			}
			dc.DrawCircle(cx, mid, r)
			if err := dc.Fill(); err != nil {
				return err
			}
		}
		return nil
	}
}

func drawLegend(x, y, w, h float64, scale *state.ValueScale) func(*gg.Context) error {
	return func(dc *gg.Context) error {
		if scale == nil {
			return nil
		}
		bar := min(w-2*titleGap, 240)
		cell := bar / legendSteps
		for i := range legendSteps {
			v := scale.Min + (scale.Max-scale.Min)*float64(i)/float64(legendSteps-1)
			dc.SetHexColor(scale.Color(v))
			dc.DrawRectangle(x+titleGap+float64(i)*cell, y, cell+0.5, h)
			if err := dc.Fill(); err != nil {
				return err
			}
		}
		return nil
	}
}
