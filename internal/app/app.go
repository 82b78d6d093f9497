package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"swing-plate.klederson.com/internal/bluetooth"
	"swing-plate.klederson.com/internal/capture"
	"swing-plate.klederson.com/internal/config"
	"swing-plate.klederson.com/internal/device"
	"swing-plate.klederson.com/internal/ui"
)

// shared holds state shared between the Bubble Tea model copies and main.go.
// Because Bubble Tea uses value receivers, pointer fields ensure all copies
// see the same underlying data.
type shared struct {
	leadHistory  *WeightRing
	trailHistory *WeightRing
	cancel       context.CancelFunc
}

// Options configures the dashboard.
type Options struct {
	DeviceName string
	Adapter    string
	Demo       bool
	Cancel     context.CancelFunc // stops the control loop on quit
}

// Model is the root Bubble Tea model for the plate dashboard.
type Model struct {
	width  int
	height int

	deviceName string
	adapter    string
	demo       bool

	status   device.StatusMsg
	peer     string
	cues     []ui.CueEntry
	last     *ui.CaptureView
	captures int
	err      error

	shared *shared
}

// New creates a new Model.
func New(opts Options) Model {
	return Model{
		deviceName: opts.DeviceName,
		adapter:    opts.Adapter,
		demo:       opts.Demo,
		shared: &shared{
			leadHistory:  NewWeightRing(config.HistoryLen),
			trailHistory: NewWeightRing(config.HistoryLen),
			cancel:       opts.Cancel,
		},
	}
}

// Err returns the error that ended the dashboard, if any.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		return m, tickCmd()

	case device.StatusMsg:
		m.status = msg
		m.shared.leadHistory.Push(msg.Lead)
		m.shared.trailHistory.Push(msg.Trail)
		return m, nil

	case device.CueMsg:
		m.logCue(ui.CueEntry{At: msg.At, Cue: msg.Cue})
		return m, nil

	case device.TransitionMsg:
		m.status.State = msg.To
		return m, nil

	case device.CapturedMsg:
		m.last = &ui.CaptureView{At: msg.At, Samples: msg.Samples}
		m.captures++
		return m, nil

	case device.LinkMsg:
		switch msg.Event.Kind {
		case bluetooth.EventConnect:
			m.peer = msg.Event.Peer
		case bluetooth.EventDisconnect:
			m.peer = ""
		case bluetooth.EventWrite:
			m.logCue(ui.CueEntry{At: msg.At, Inbound: string(msg.Event.Payload)})
		}
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		m.stop()
		return m, tea.Quit
	}

	return m, nil
}

// logCue appends to the cue log, keeping the newest CueLogLen entries.
func (m *Model) logCue(e ui.CueEntry) {
	m.cues = append(m.cues, e)
	if len(m.cues) > config.CueLogLen {
		m.cues = m.cues[len(m.cues)-config.CueLogLen:]
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.stop()
		return m, tea.Quit

	case "c", "C":
		m.cues = nil
	}

	return m, nil
}

func (m Model) stop() {
	if m.shared.cancel != nil {
		m.shared.cancel()
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing " + config.AppName + "..."
	}

	menuH := 1
	statusH := 1
	bodyH := m.height - menuH - statusH
	if bodyH < 5 {
		bodyH = 5
	}

	plateW := m.width * 3 / 5
	if plateW < 40 {
		plateW = 40
	}
	cueW := m.width - plateW
	if cueW < 36 {
		cueW = 36
		plateW = m.width - cueW
	}

	menuBar := ui.RenderMenuBar(m.width, m.deviceName, m.adapter, m.peer, m.status.Connected)

	platePanel := ui.RenderPlatePanel(plateW, bodyH, ui.PlateView{
		State:        m.status.State,
		Lead:         m.status.Lead,
		Trail:        m.status.Trail,
		Countdown:    m.status.Countdown,
		Buffered:     m.status.Buffered,
		CaptureID:    m.status.CaptureID,
		LeadHistory:  m.shared.leadHistory.Values(),
		TrailHistory: m.shared.trailHistory.Values(),
	})
	cuePanel := ui.RenderCuePanel(cueW, bodyH, m.cues, m.last)

	statusBar := ui.RenderStatusBar(m.width, m.status.State, m.status.Tempo.String(), m.captures, m.demo)

	return ui.ComposeLayout(menuBar, platePanel, cuePanel, statusBar)
}

// State returns the phase last reported by the controller.
func (m Model) State() capture.State { return m.status.State }

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
