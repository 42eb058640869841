package ports

import (
	"context"

	"github.com/felixgeelhaar/redraw/internal/domain/state"
)

// Loader acquires the rows of a channel from its URL. Load returns at once
// and calls done exactly once with the rows or an error. It never writes to
// the state; the caller assigns the rows.
type Loader interface {
	Load(ctx context.Context, s *state.State, channel state.ChannelName, done func(rows []state.Record, err error))
}

// Selection chooses the time window a fetch covers.
type Selection int

const (
	// SelectAll ignores the time selection.
	SelectAll Selection = iota
	// SelectCurrent restricts to the currently selected time values.
	SelectCurrent
)

// Analyzer derives working data from the raw channels.
type Analyzer interface {
	// IndexKeys populates the key->type index of the channel.
	IndexKeys(s *state.State, channel state.ChannelName)
	// ParseEdges derives links from the raw edge rows.
	ParseEdges(s *state.State) error
	// ParseNodes derives node positions. It relies on parsed edges.
	ParseNodes(s *state.State) error
	// Group nests the dataset by time and by the id hierarchy.
	Group(s *state.State) error
	// Fetch returns the render dataset for the selection.
	Fetch(s *state.State, sel Selection) []state.Record
	// ColorScale computes the numeric value scale for the colour encoding.
	ColorScale(s *state.State) error
}

// Validator checks configuration consistency.
type Validator interface {
	Validate(ctx context.Context, s *state.State) error
}

// Surface owns the drawing surface and its groups.
type Surface interface {
	// Init (re)creates the root group hierarchy.
	Init(s *state.State) error
	// CreateGroup creates the drawing group of an app type at zero opacity.
	CreateGroup(s *state.State, appType string) (state.Group, error)
	// RemoveTooltip removes any tooltip bound to the app type.
	RemoveTooltip(appType string)
	// Commit applies queued changes to the live surface.
	Commit(s *state.State) error
}

// Widget names a layout widget.
type Widget string

// Layout widgets.
const (
	WidgetDrawer   Widget = "drawer"
	WidgetTimeline Widget = "timeline"
	WidgetLegend   Widget = "legend"
)

// Extent is the vertical placement of a rendered widget.
type Extent struct {
	Y      float64
	Height float64
}

// Layout draws and measures the titles and widgets around the viewport.
type Layout interface {
	Titles(s *state.State)
	DrawWidget(s *state.State, w Widget) error
	Measure(w Widget) Extent
}

// History records layout state for browsing history.
type History interface {
	Record(ctx context.Context, s *state.State) error
}

// Renderer draws the visualisation.
type Renderer interface {
	FocusTooltip(s *state.State) error
	DrawType(s *state.State) error
	DrawShapes(s *state.State) error
	FocusViz(s *state.State) error
	Finish(s *state.State) error
}
