package replay

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderTable writes the cue timeline of a replay.
func RenderTable(w io.Writer, res *Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("Replay  tempo %s  %.2fs", res.Tempo, res.Duration.Seconds()))
	t.AppendHeader(table.Row{"#", "T (ms)", "Cue", "Detail"})

	for i, n := range res.Notifications {
		cue, detail := n.Payload, ""
		if n.IsDataset() {
			cue = "DATASET"
			detail = fmt.Sprintf("%d samples, %d bytes", countSamples(n.Payload), len(n.Payload))
		}
		t.AppendRow(table.Row{i + 1, n.At.Milliseconds(), cue, detail})
	}
	if len(res.Notifications) == 0 {
		t.AppendRow(table.Row{"", "", "no cues", ""})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
}

// countSamples counts the entries of the first (time) group.
func countSamples(payload string) int {
	group, _, _ := strings.Cut(payload, ";")
	group = strings.Trim(group, "()")
	if group == "" {
		return 0
	}
	return strings.Count(group, ",") + 1
}
