package app

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/redraw/internal/domain/plan"
	"github.com/felixgeelhaar/redraw/internal/tui/ui"
)

// styles holds the output styles bound to one writer. A renderer tied to
// the writer drops colour when the writer is not a terminal.
type styles struct {
	title   lipgloss.Style
	step    lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(ui.ColorPrimary),
		step:    r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(ui.ColorMuted),
		success: r.NewStyle().Foreground(ui.ColorSuccess),
		warning: r.NewStyle().Foreground(ui.ColorWarning),
		failure: r.NewStyle().Foreground(ui.ColorError),
	}
}

// status renders the marker for a step outcome.
func (s styles) status(st plan.Status) string {
	switch st {
	case plan.StatusDone:
		return s.success.Render(st.Symbol())
	case plan.StatusFailed:
		return s.failure.Render(st.Symbol())
	case plan.StatusCancelled:
		return s.warning.Render(st.Symbol())
	case plan.StatusPending, plan.StatusSkipped:
		return s.muted.Render(st.Symbol())
	}
	return st.Symbol()
}
