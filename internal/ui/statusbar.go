package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"swing-plate.klederson.com/internal/capture"
)

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, state capture.State, tempo string, captures int, demo bool) string {
	status := StateStyle(state).Render("[" + state.String() + "]")

	info := fmt.Sprintf(" Tempo: %s  Captures: %d  Threshold: %.0fg", tempo, captures, presenceThreshold())
	if demo {
		info += "  DEMO"
	}

	content := status + StyleStatusBar.Foreground(ColorGreen).Render(info)

	gap := width - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
