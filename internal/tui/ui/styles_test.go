package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStyles(t *testing.T) {
	t.Parallel()

	styles := DefaultStyles()

	assert.NotEmpty(t, styles.Title.Render("Test"))
	assert.NotEmpty(t, styles.Success.Render("Success"))
	assert.NotEmpty(t, styles.Error.Render("Error"))
	assert.Contains(t, styles.Help.Render("Ctrl+C to cancel"), "Ctrl+C to cancel")
}
