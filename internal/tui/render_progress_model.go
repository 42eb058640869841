package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/redraw/internal/domain/execution"
	"github.com/felixgeelhaar/redraw/internal/domain/plan"
	"github.com/felixgeelhaar/redraw/internal/tui/components"
	"github.com/felixgeelhaar/redraw/internal/tui/ui"
)

// StepMsg is sent when the executor is about to run a step.
type StepMsg struct {
	Progress execution.Progress
}

// RenderDoneMsg is sent when rendering has finished.
type RenderDoneMsg struct {
	Err error
}

// renderProgressModel is the Bubble Tea model for render progress.
type renderProgressModel struct {
	progressBar components.Progress
	spinner     components.Spinner
	styles      ui.Styles
	cycles      int
	currentStep plan.StepID
	err         error
	done        bool
	cancelled   bool
}

func newRenderProgressModel() renderProgressModel {
	return renderProgressModel{
		progressBar: components.NewProgress().WithWidth(40),
		spinner:     components.NewSpinner(),
		styles:      ui.DefaultStyles(),
	}
}

// Init starts the spinner.
func (m renderProgressModel) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages.
func (m renderProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			return m, tea.Quit
		}

	case StepMsg:
		p := msg.Progress
		if p.Index == 0 {
			m.cycles++
		}
		m.currentStep = p.StepID
		m.progressBar = m.progressBar.SetTotal(p.Total).SetCurrent(p.Index)
		m.spinner = m.spinner.SetMessage(p.Message)
		return m, nil

	case RenderDoneMsg:
		m.done = true
		m.err = msg.Err
		m.progressBar = m.progressBar.SetCurrent(m.progressBar.Total())
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the model.
func (m renderProgressModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Rendering"))
	b.WriteString("\n\n")

	b.WriteString(m.progressBar.View())
	b.WriteString("\n\n")

	b.WriteString(m.styles.Help.Render(fmt.Sprintf("Cycle %d", m.cycles)))
	b.WriteString("\n\n")

	if m.currentStep.String() != "" && !m.done {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.styles.Info.Render(fmt.Sprintf("Running: %s", m.currentStep.String())))
		b.WriteString("\n\n")
	}

	if m.done {
		if m.err == nil {
			b.WriteString(m.styles.Success.Render("Render complete"))
		} else {
			b.WriteString(m.styles.Error.Render(fmt.Sprintf("Render failed: %v", m.err)))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.styles.Help.Render("Ctrl+C to cancel"))
	return b.String()
}
