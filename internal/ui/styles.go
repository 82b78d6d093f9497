package ui

import (
	"github.com/charmbracelet/lipgloss"

	"swing-plate.klederson.com/internal/capture"
)

// Matrix color palette
var (
	ColorMatrixGreen  = lipgloss.Color("#00FF41")
	ColorGreen        = lipgloss.Color("#00CC33")
	ColorMidGreen     = lipgloss.Color("#008F11")
	ColorDimGreen     = lipgloss.Color("#004A0A")
	ColorBlack        = lipgloss.Color("#000000")
	ColorLead         = lipgloss.Color("#00FFAA")
	ColorTrail        = lipgloss.Color("#33FF66")
	ColorBorderBright = lipgloss.Color("#00FF41")
	ColorBorderNorm   = lipgloss.Color("#00AA22")
	ColorError        = lipgloss.Color("#FF3300")
	ColorWarning      = lipgloss.Color("#FFAA00")
)

// Pre-built styles
var (
	StyleMenuBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StyleMenuKey = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleMenuLabel = lipgloss.NewStyle().
			Foreground(ColorGreen)

	StyleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorGreen).
			Padding(0, 1)

	StyleConnected = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleAdvertising = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	StylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderNorm)

	StylePanelActive = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderBright)

	StylePanelTitle = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleRule = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleLead = lipgloss.NewStyle().
			Foreground(ColorLead)

	StyleTrail = lipgloss.NewStyle().
			Foreground(ColorTrail)

	StyleThreshold = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StyleCueTime = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleCue = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen)

	StyleCueAbort = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorDimGreen)
)

// StateStyle colors the phase name: dim when idle, amber during the
// countdown, green while recording and red for the swing window.
func StateStyle(s capture.State) lipgloss.Style {
	switch s {
	case capture.StateDetected:
		return lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	case capture.StateRecording:
		return lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)
	case capture.StateFinishing:
		return lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(ColorMidGreen)
	}
}
