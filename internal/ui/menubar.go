package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"swing-plate.klederson.com/internal/config"
)

// RenderMenuBar renders the top menu bar. peer is the connected central's
// address, empty while advertising.
func RenderMenuBar(width int, deviceName, adapter, peer string, connected bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"C", "lear log"},
		{"Q", "uit"},
	}

	menu := ""
	for _, k := range keys {
		menu += "  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label)
	}

	status := ""
	if connected {
		status = StyleConnected.Render("CONNECTED")
		if peer != "" {
			status += StyleMenuLabel.Render(" " + peer)
		}
	} else {
		status = StyleAdvertising.Render("ADVERTISING")
	}

	info := StyleMenuLabel.Render(fmt.Sprintf("%s  Adapter: %s", deviceName, adapter))

	left := StyleMenuKey.Render(title) + menu
	right := status + "  " + info + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
