package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the plate panel and cue panel horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, platePanel, cuePanel, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, platePanel, cuePanel)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}
