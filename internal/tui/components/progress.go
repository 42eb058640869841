// Package components provides reusable terminal view components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/redraw/internal/tui/ui"
)

// Progress displays a progress bar with an optional message.
type Progress struct {
	percent float64
	current int
	total   int
	message string
	width   int
	styles  ui.Styles
}

// NewProgress creates a new progress component.
func NewProgress() Progress {
	return Progress{
		width:  40,
		styles: ui.DefaultStyles(),
	}
}

// Percent returns the current percentage (0.0 to 1.0).
func (p Progress) Percent() float64 {
	return p.percent
}

// Current returns the current step number.
func (p Progress) Current() int {
	return p.current
}

// Total returns the total number of steps.
func (p Progress) Total() int {
	return p.total
}

// Message returns the current message.
func (p Progress) Message() string {
	return p.message
}

// SetCurrent sets the current step number and updates percent.
func (p Progress) SetCurrent(current int) Progress {
	current = max(current, 0)
	if p.total > 0 {
		current = min(current, p.total)
		p.percent = float64(current) / float64(p.total)
	}
	p.current = current
	return p
}

// SetTotal sets the total number of steps.
func (p Progress) SetTotal(total int) Progress {
	p.total = max(total, 0)
	if p.total > 0 {
		p.percent = float64(min(p.current, p.total)) / float64(p.total)
	}
	return p
}

// SetMessage sets the status message.
func (p Progress) SetMessage(message string) Progress {
	p.message = message
	return p
}

// WithWidth sets the progress bar width.
func (p Progress) WithWidth(width int) Progress {
	p.width = width
	return p
}

// View renders the progress bar.
func (p Progress) View() string {
	var b strings.Builder

	barWidth := max(p.width-2, 0)
	filled := int(p.percent * float64(barWidth))
	bar := fmt.Sprintf("[%s%s]",
		strings.Repeat("█", filled),
		strings.Repeat("░", barWidth-filled),
	)
	b.WriteString(p.styles.ProgressBar.Render(bar))
	fmt.Fprintf(&b, " %3.0f%%", p.percent*100)

	if p.message != "" {
		b.WriteString("\n")
		b.WriteString(p.styles.Help.Render(p.message))
	}
	return b.String()
}

// Spinner displays an animated spinner with an optional message.
type Spinner struct {
	spinner spinner.Model
	message string
}

// NewSpinner creates a new spinner component.
func NewSpinner() Spinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.DefaultStyles().Spinner
	return Spinner{spinner: s}
}

// Message returns the current message.
func (s Spinner) Message() string {
	return s.message
}

// SetMessage sets the spinner message.
func (s Spinner) SetMessage(message string) Spinner {
	s.message = message
	return s
}

// Init returns the initial command for the spinner.
func (s Spinner) Init() tea.Cmd {
	return s.spinner.Tick
}

// Update handles spinner animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner.
func (s Spinner) View() string {
	if s.message != "" {
		return fmt.Sprintf("%s %s", s.spinner.View(), s.message)
	}
	return s.spinner.View()
}
