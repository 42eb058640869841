package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProgress(t *testing.T) {
	t.Parallel()

	progress := NewProgress()

	assert.Equal(t, 0.0, progress.Percent())
	assert.Empty(t, progress.Message())
}

func TestProgress_SetCurrent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		total       int
		current     int
		wantCurrent int
		wantPercent float64
	}{
		{"half", 10, 5, 5, 0.5},
		{"clamps to total", 4, 9, 4, 1},
		{"clamps negative", 4, -1, 0, 0},
		{"no total", 0, 3, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewProgress().SetTotal(tt.total).SetCurrent(tt.current)
			assert.Equal(t, tt.wantCurrent, p.Current())
			assert.Equal(t, tt.total, p.Total())
			assert.InDelta(t, tt.wantPercent, p.Percent(), 1e-9)
		})
	}
}

func TestProgress_View(t *testing.T) {
	t.Parallel()

	view := NewProgress().WithWidth(12).SetTotal(4).SetCurrent(2).SetMessage("Drawing...").View()

	assert.Contains(t, view, "█████░░░░░")
	assert.Contains(t, view, "50%")
	assert.Contains(t, view, "Drawing...")
}

func TestSpinner(t *testing.T) {
	t.Parallel()

	s := NewSpinner()
	assert.NotNil(t, s.Init())

	s = s.SetMessage("load:data")
	assert.Equal(t, "load:data", s.Message())
	assert.Contains(t, s.View(), "load:data")
}
