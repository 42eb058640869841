package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/redraw/internal/domain/execution"
	"github.com/felixgeelhaar/redraw/internal/domain/plan"
)

func stepMsg(t *testing.T, id string, index, total int) StepMsg {
	t.Helper()

	stepID, err := plan.NewStepID(id)
	require.NoError(t, err)
	return StepMsg{Progress: execution.Progress{Index: index, Total: total, StepID: stepID, Message: "Running " + id}}
}

func TestRenderProgressModel_Init(t *testing.T) {
	t.Parallel()

	model := newRenderProgressModel()

	assert.NotNil(t, model.Init(), "Init should start the spinner")
}

func TestRenderProgressModel_View(t *testing.T) {
	t.Parallel()

	view := newRenderProgressModel().View()

	assert.Contains(t, view, "Rendering")
	assert.Contains(t, view, "Ctrl+C to cancel")
	assert.NotContains(t, view, "Running:")
}

func TestRenderProgressModel_Step(t *testing.T) {
	t.Parallel()

	var model tea.Model = newRenderProgressModel()
	model, _ = model.Update(stepMsg(t, "data:fetch", 0, 4))
	model, _ = model.Update(stepMsg(t, "shapes:draw", 2, 4))
	m := model.(renderProgressModel)

	assert.Equal(t, 1, m.cycles)
	assert.Equal(t, "shapes:draw", m.currentStep.String())
	assert.InDelta(t, 0.5, m.progressBar.Percent(), 1e-9)
	assert.Contains(t, m.View(), "Running: shapes:draw")
}

func TestRenderProgressModel_CountsCycles(t *testing.T) {
	t.Parallel()

	var model tea.Model = newRenderProgressModel()
	model, _ = model.Update(stepMsg(t, "data:fetch", 0, 2))
	model, _ = model.Update(stepMsg(t, "layout", 1, 2))
	model, _ = model.Update(stepMsg(t, "layout", 0, 1))
	m := model.(renderProgressModel)

	assert.Equal(t, 2, m.cycles)
	assert.Contains(t, m.View(), "Cycle 2")
}

func TestRenderProgressModel_Done(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, "Render complete"},
		{"failure", errors.New("boom"), "Render failed: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var model tea.Model = newRenderProgressModel()
			model, _ = model.Update(stepMsg(t, "layout", 0, 2))
			model, cmd := model.Update(RenderDoneMsg{Err: tt.err})
			m := model.(renderProgressModel)

			require.NotNil(t, cmd)
			assert.True(t, m.done)
			assert.InDelta(t, 1.0, m.progressBar.Percent(), 1e-9)
			assert.Contains(t, m.View(), tt.want)
			assert.NotContains(t, m.View(), "Ctrl+C to cancel")
		})
	}
}

func TestRenderProgressModel_CtrlC(t *testing.T) {
	t.Parallel()

	model := newRenderProgressModel()

	newModel, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m := newModel.(renderProgressModel)

	assert.True(t, m.cancelled)
	require.NotNil(t, cmd)
}
