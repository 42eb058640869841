// Package ui provides the shared palette and styles of the terminal views.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors.
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"}
	ColorText    = lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"}
)

// Styles contains reusable lipgloss styles for the terminal views.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Help    lipgloss.Style

	ProgressBar lipgloss.Style
	Spinner     lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1),
		Success:     lipgloss.NewStyle().Foreground(ColorSuccess),
		Warning:     lipgloss.NewStyle().Foreground(ColorWarning),
		Error:       lipgloss.NewStyle().Foreground(ColorError),
		Info:        lipgloss.NewStyle().Foreground(ColorText),
		Help:        lipgloss.NewStyle().Foreground(ColorMuted),
		ProgressBar: lipgloss.NewStyle().Foreground(ColorPrimary),
		Spinner:     lipgloss.NewStyle().Foreground(ColorPrimary),
	}
}
