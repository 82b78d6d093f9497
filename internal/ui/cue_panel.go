package ui

import (
	"fmt"
	"strings"
	"time"

	"swing-plate.klederson.com/internal/capture"
	"swing-plate.klederson.com/internal/dataset"
)

// CueEntry is one line of the cue log: a cue sent to the phone, or the
// payload of a write received from it when Cue is empty.
type CueEntry struct {
	At      time.Time
	Cue     capture.Cue
	Inbound string
}

// CaptureView summarises the last dataset sent.
type CaptureView struct {
	At      time.Time
	Samples []dataset.Sample
}

// RenderCuePanel renders the cue log with the last capture underneath.
// Newest cues are at the bottom of the log.
func RenderCuePanel(width, height int, cues []CueEntry, last *CaptureView) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}
	innerH := height - 2

	// Fixed footer: last capture summary
	var footer []string
	footer = append(footer, "", StylePanelTitle.Render("LAST CAPTURE"), StyleRule.Render(strings.Repeat("-", innerW)))
	if last == nil || len(last.Samples) == 0 {
		footer = append(footer, StyleHelp.Render(" Waiting for a swing"))
	} else {
		footer = append(footer, renderCapture(last, innerW)...)
	}

	header := []string{
		StylePanelTitle.Render(fmt.Sprintf("CUES [%d]", len(cues))),
		StyleRule.Render(strings.Repeat("-", innerW)),
	}

	logSpace := innerH - len(header) - len(footer)
	if logSpace < 1 {
		logSpace = 1
	}

	var logLines []string
	if len(cues) == 0 {
		logLines = append(logLines, StyleHelp.Render(" No cues yet..."))
	} else {
		start := 0
		if len(cues) > logSpace {
			start = len(cues) - logSpace
		}
		for _, c := range cues[start:] {
			logLines = append(logLines, renderCueEntry(c))
		}
	}
	for len(logLines) < logSpace {
		logLines = append(logLines, "")
	}

	all := make([]string, 0, innerH)
	all = append(all, header...)
	all = append(all, logLines...)
	all = append(all, footer...)
	if len(all) > innerH {
		all = all[:innerH]
	}

	return StylePanelBorder.Width(width - 2).Height(innerH).Render(strings.Join(all, "\n"))
}

func renderCueEntry(c CueEntry) string {
	at := " " + StyleCueTime.Render(c.At.Format("15:04:05.000")) + " "
	if c.Cue == "" {
		return at + StyleLabel.Render("< "+c.Inbound)
	}
	sty := StyleCue
	if c.Cue == capture.CueSteppedOff {
		sty = StyleCueAbort
	}
	return at + sty.Render(string(c.Cue))
}

func renderCapture(last *CaptureView, innerW int) []string {
	n := len(last.Samples)
	span := last.Samples[n-1].Elapsed - last.Samples[0].Elapsed

	lead := make([]float64, n)
	trail := make([]float64, n)
	for i, s := range last.Samples {
		lead[i] = s.Lead
		trail[i] = s.Trail
	}

	sparkW := innerW - 8
	if sparkW < 5 {
		sparkW = 5
	}

	return []string{
		StyleLabel.Render(" At    ") + StyleValue.Render(last.At.Format("15:04:05")),
		StyleLabel.Render(" Size  ") + StyleValue.Render(fmt.Sprintf("%d samples, %.2fs", n, span)),
		StyleLabel.Render(" Lead  ") + StyleLead.Render(renderSparkline(resample(lead, sparkW), sparkW)),
		StyleLabel.Render(" Trail ") + StyleTrail.Render(renderSparkline(resample(trail, sparkW), sparkW)),
	}
}
