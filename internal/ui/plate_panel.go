package ui

import (
	"fmt"
	"strings"
	"time"

	"swing-plate.klederson.com/internal/capture"
	"swing-plate.klederson.com/internal/config"
)

// PlateView is what the plate panel shows.
type PlateView struct {
	State        capture.State
	Lead         float64
	Trail        float64
	Countdown    time.Duration
	Buffered     int
	CaptureID    string
	LeadHistory  []float64
	TrailHistory []float64
}

// RenderPlatePanel renders live weights, phase and countdown.
func RenderPlatePanel(width, height int, v PlateView) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	lines := []string{
		StylePanelTitle.Render("PLATES"),
		StyleRule.Render(strings.Repeat("-", innerW)),
		"",
	}

	field := func(label, value string) string {
		return StyleLabel.Render(fmt.Sprintf("  %-10s", label)) + value
	}

	lines = append(lines,
		field("State", StateStyle(v.State).Render(v.State.String())),
		field("Countdown", StyleValue.Render(countdownLabel(v))),
		field("Buffered", StyleValue.Render(fmt.Sprintf("%d samples", v.Buffered))),
		field("Capture", StyleValue.Render(shortID(v.CaptureID))),
		"",
	)

	// Gauges: label (8) + brackets (2) + value (10)
	gaugeW := innerW - 20
	if gaugeW < 10 {
		gaugeW = 10
	}
	lines = append(lines,
		StyleLabel.Render("  Lead  ")+renderGauge(v.Lead, config.GaugeFullScale, gaugeW, StyleLead)+
			StyleValue.Render(fmt.Sprintf(" %8.0fg", v.Lead)),
		StyleLabel.Render("  Trail ")+renderGauge(v.Trail, config.GaugeFullScale, gaugeW, StyleTrail)+
			StyleValue.Render(fmt.Sprintf(" %8.0fg", v.Trail)),
		"",
	)

	if total := v.Lead + v.Trail; total > 0 && v.Lead > 0 && v.Trail > 0 {
		lines = append(lines, field("Balance", StyleValue.Render(
			fmt.Sprintf("lead %.0f%% / trail %.0f%%", v.Lead/total*100, v.Trail/total*100))))
		lines = append(lines, "")
	}

	sparkW := innerW - 4
	if sparkW < 10 {
		sparkW = 10
	}
	if len(v.LeadHistory) > 0 {
		lines = append(lines, StyleLabel.Render("  Lead history:"))
		lines = append(lines, "  "+StyleLead.Render(renderSparkline(v.LeadHistory, sparkW)))
	}
	if len(v.TrailHistory) > 0 {
		lines = append(lines, StyleLabel.Render("  Trail history:"))
		lines = append(lines, "  "+StyleTrail.Render(renderSparkline(v.TrailHistory, sparkW)))
	}

	innerH := height - 2
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for len(lines) < innerH {
		lines = append(lines, "")
	}

	border := StylePanelBorder
	if v.State != capture.StateIdle {
		border = StylePanelActive
	}
	return border.Width(width - 2).Height(innerH).Render(strings.Join(lines, "\n"))
}

func countdownLabel(v PlateView) string {
	switch {
	case v.State == capture.StateFinishing:
		return "SWING"
	case v.Countdown > 0:
		return fmt.Sprintf("%.1fs", v.Countdown.Seconds())
	default:
		return "-"
	}
}

func shortID(id string) string {
	if id == "" {
		return "-"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
