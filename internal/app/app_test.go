package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"swing-plate.klederson.com/internal/bluetooth"
	"swing-plate.klederson.com/internal/capture"
	"swing-plate.klederson.com/internal/config"
	"swing-plate.klederson.com/internal/dataset"
	"swing-plate.klederson.com/internal/device"
	"swing-plate.klederson.com/internal/tempo"
)

func TestWeightRing(t *testing.T) {
	r := NewWeightRing(3)
	if r.Values() != nil || r.Last() != 0 {
		t.Error("empty ring should have no values")
	}

	for _, v := range []float64{1, 2, 3, 4} {
		r.Push(v)
	}
	got := r.Values()
	if len(got) != 3 || got[0] != 2 || got[2] != 4 {
		t.Errorf("Values() = %v, want [2 3 4]", got)
	}
	if r.Last() != 4 || r.Len() != 3 {
		t.Errorf("Last() = %v, Len() = %d", r.Last(), r.Len())
	}

	r.Reset()
	if r.Len() != 0 {
		t.Errorf("Len() after Reset = %d", r.Len())
	}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTracksController(t *testing.T) {
	m := New(Options{DeviceName: config.DeviceName, Adapter: "hci0"})
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 30})

	m = update(m, device.StatusMsg{
		State:     capture.StateDetected,
		Connected: true,
		Lead:      40000,
		Trail:     38000,
		Tempo:     tempo.Config{Back: 21, Down: 7},
		Countdown: 3 * time.Second,
	})
	for i := 0; i < config.CueLogLen+3; i++ {
		m = update(m, device.CueMsg{Cue: capture.CueWeightDetected, At: time.Unix(int64(i), 0)})
	}
	m = update(m, device.TransitionMsg{From: capture.StateDetected, To: capture.StateRecording})
	m = update(m, device.CapturedMsg{
		Samples: []dataset.Sample{{Elapsed: 0}, {Elapsed: 1}},
		At:      time.Unix(100, 0),
	})

	if m.State() != capture.StateRecording {
		t.Errorf("State() = %s, want RECORDING", m.State())
	}
	if len(m.cues) != config.CueLogLen {
		t.Errorf("cue log = %d entries, want %d", len(m.cues), config.CueLogLen)
	}
	if m.captures != 1 || m.last == nil {
		t.Errorf("captures = %d, last = %v", m.captures, m.last)
	}
	if m.shared.leadHistory.Last() != 40000 {
		t.Errorf("lead history last = %v", m.shared.leadHistory.Last())
	}

	view := m.View()
	for _, want := range []string{"CONNECTED", "RECORDING", "21/7", "CUES"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelQuitCancelsLoop(t *testing.T) {
	cancelled := false
	m := New(Options{Cancel: func() { cancelled = true }})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !cancelled {
		t.Error("quit should cancel the control loop")
	}
}

func TestModelErrorQuits(t *testing.T) {
	m := New(Options{})
	next, cmd := m.Update(ErrorMsg{Err: errors.New("bridge lost")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.(Model).Err() == nil {
		t.Error("Err() should report the control loop failure")
	}
}

func TestClearCueLog(t *testing.T) {
	m := New(Options{})
	m = update(m, device.CueMsg{Cue: capture.CueTopBeep})
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if len(m.cues) != 0 {
		t.Errorf("cue log = %d entries after clear", len(m.cues))
	}
}

func TestViewBeforeResize(t *testing.T) {
	if got := New(Options{}).View(); !strings.Contains(got, "Initializing") {
		t.Errorf("View() = %q", got)
	}
}

func TestModelShowsLinkActivity(t *testing.T) {
	const peer = "AA:BB:CC:DD:EE:FF"
	m := New(Options{DeviceName: config.DeviceName, Adapter: "hci0"})
	m = update(m, tea.WindowSizeMsg{Width: 140, Height: 30})

	m = update(m, device.LinkMsg{Event: bluetooth.Event{Kind: bluetooth.EventConnect, Peer: peer}})
	m = update(m, device.StatusMsg{State: capture.StateIdle, Connected: true})
	m = update(m, device.LinkMsg{
		Event: bluetooth.Event{Kind: bluetooth.EventWrite, Peer: peer, Payload: []byte("21/7")},
		At:    time.Unix(5, 0),
	})

	if m.peer != peer {
		t.Errorf("peer = %q, want %q", m.peer, peer)
	}
	if len(m.cues) != 1 || m.cues[0].Inbound != "21/7" || m.cues[0].Cue != "" {
		t.Fatalf("cue log = %+v, want one inbound 21/7 entry", m.cues)
	}
	view := m.View()
	for _, want := range []string{peer, "< 21/7"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = update(m, device.LinkMsg{Event: bluetooth.Event{Kind: bluetooth.EventDisconnect, Peer: peer}})
	m = update(m, device.StatusMsg{State: capture.StateIdle})
	if m.peer != "" {
		t.Errorf("peer = %q after disconnect, want empty", m.peer)
	}
	if view := m.View(); strings.Contains(view, peer) || !strings.Contains(view, "ADVERTISING") {
		t.Errorf("view after disconnect should advertise without a peer")
	}
}

func TestInboundWritesShareCueLogBound(t *testing.T) {
	m := New(Options{})
	for i := 0; i < config.CueLogLen; i++ {
		m = update(m, device.CueMsg{Cue: capture.CueTopBeep})
	}
	m = update(m, device.LinkMsg{Event: bluetooth.Event{Kind: bluetooth.EventWrite, Payload: []byte("3/1")}})

	if len(m.cues) != config.CueLogLen {
		t.Fatalf("cue log = %d entries, want %d", len(m.cues), config.CueLogLen)
	}
	if got := m.cues[len(m.cues)-1].Inbound; got != "3/1" {
		t.Errorf("newest entry = %q, want inbound 3/1", got)
	}
}
