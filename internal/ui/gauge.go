package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"swing-plate.klederson.com/internal/config"
)

func presenceThreshold() float64 { return config.PresenceThreshold }

// renderGauge maps weight 0..full onto width cells. The presence threshold
// is marked with '!' while the bar has not reached it.
func renderGauge(weight, full float64, width int, sty lipgloss.Style) string {
	ratio := weight / full
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * float64(width)))

	mark := int(math.Round(config.PresenceThreshold / full * float64(width)))
	if mark >= width {
		mark = width - 1
	}

	empty := ""
	if mark >= filled {
		empty = StyleHelp.Render(strings.Repeat("-", mark-filled)) +
			StyleThreshold.Render("!") +
			StyleHelp.Render(strings.Repeat("-", width-mark-1))
	} else {
		empty = StyleHelp.Render(strings.Repeat("-", width-filled))
	}

	return StyleHelp.Render("[") + sty.Render(strings.Repeat("|", filled)) + empty + StyleHelp.Render("]")
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	// Take last `width` values
	start := 0
	if len(values) > width {
		start = len(values) - width
	}
	values = values[start:]

	// Find min/max for scaling
	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int((v - minV) / rng * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteByte(chars[idx])
	}

	return sb.String()
}

// resample picks width evenly spaced values so a whole capture fits one
// sparkline.
func resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	step := float64(len(values)-1) / float64(width-1)
	for i := range out {
		out[i] = values[int(math.Round(float64(i)*step))]
	}
	return out
}
