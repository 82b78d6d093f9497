package device

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"swing-plate.klederson.com/internal/bluetooth"
	"swing-plate.klederson.com/internal/capture"
	"swing-plate.klederson.com/internal/config"
	"swing-plate.klederson.com/internal/dataset"
)

type plate struct{ weight float64 }

func (p *plate) Ready() bool   { return true }
func (p *plate) Read() float64 { return p.weight }

type testLink struct {
	queue    bluetooth.Queue
	sent     []string
	onNotify func(payload string)
}

func newTestLink() *testLink { return &testLink{} }

func (l *testLink) Drain() []bluetooth.Event { return l.queue.Drain() }

func (l *testLink) Notify(payload []byte) error {
	l.sent = append(l.sent, string(payload))
	if l.onNotify != nil {
		l.onNotify(string(payload))
	}
	return nil
}

func (l *testLink) post(kind bluetooth.EventKind, payload string) {
	ev := bluetooth.Event{Kind: kind, Peer: "AA:BB:CC:DD:EE:FF"}
	if payload != "" {
		ev.Payload = []byte(payload)
	}
	l.queue.Post(ev)
}

func (l *testLink) dataset() (string, bool) {
	for _, p := range l.sent {
		if strings.HasPrefix(p, "(") {
			return p, true
		}
	}
	return "", false
}

type sender struct{ msgs []tea.Msg }

func (s *sender) Send(msg tea.Msg) { s.msgs = append(s.msgs, msg) }

type fixture struct {
	clock *capture.VirtualClock
	lead  *plate
	trail *plate
	link  *testLink
	out   *sender
	c     *Controller
}

func newFixture() *fixture {
	f := &fixture{
		clock: capture.NewVirtualClock(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)),
		lead:  &plate{},
		trail: &plate{},
		link:  newTestLink(),
		out:   &sender{},
	}
	f.c = New(Options{
		Lead:  f.lead,
		Trail: f.trail,
		Link:  f.link,
		Clock: f.clock,
	})
	f.c.SetProgram(f.out)
	return f
}

func (f *fixture) run(total time.Duration) {
	for elapsed := time.Duration(0); elapsed < total; elapsed += 10 * time.Millisecond {
		f.clock.Advance(10 * time.Millisecond)
		f.c.Step()
	}
}

func TestLinkEventsAppliedBeforeTick(t *testing.T) {
	f := newFixture()
	f.link.post(bluetooth.EventConnect, "")
	f.link.post(bluetooth.EventWrite, "21/7")
	f.lead.weight, f.trail.weight = 2000, 2000

	f.run(10 * time.Millisecond)

	m := f.c.Machine()
	if !m.Connected() {
		t.Fatal("machine should be connected")
	}
	if got := m.Tempo().String(); got != "21/7" {
		t.Errorf("tempo = %s, want 21/7", got)
	}
	if m.State() != capture.StateDetected {
		t.Errorf("state = %s, want DETECTED", m.State())
	}
}

func TestNoTicksWithoutCentral(t *testing.T) {
	f := newFixture()
	f.lead.weight, f.trail.weight = 2000, 2000

	f.run(100 * time.Millisecond)

	if f.c.Machine().State() != capture.StateIdle {
		t.Errorf("state = %s, want IDLE", f.c.Machine().State())
	}
	if len(f.link.sent) != 0 {
		t.Errorf("sent %v while disconnected", f.link.sent)
	}
}

func TestFullCycleReachesDashboard(t *testing.T) {
	f := newFixture()
	f.link.post(bluetooth.EventConnect, "")
	f.lead.weight, f.trail.weight = 2000, 2000

	f.run(5010 * time.Millisecond)

	if _, ok := f.link.dataset(); !ok {
		t.Fatalf("no dataset sent, got %v", f.link.sent)
	}

	var cues []string
	var transitions []string
	var captured, statuses, links int
	for _, msg := range f.out.msgs {
		switch msg := msg.(type) {
		case CueMsg:
			cues = append(cues, string(msg.Cue))
		case TransitionMsg:
			transitions = append(transitions, msg.To.String())
		case CapturedMsg:
			captured++
			if len(msg.Samples) == 0 {
				t.Error("CapturedMsg without samples")
			}
		case StatusMsg:
			statuses++
		case LinkMsg:
			links++
		}
	}

	wantCues := []string{"WEIGHT_DETECTED", "START_SWING", "TOP_BEEP", "IMPACT_BEEP"}
	if strings.Join(cues, ",") != strings.Join(wantCues, ",") {
		t.Errorf("cues = %v, want %v", cues, wantCues)
	}
	wantTransitions := "DETECTED,RECORDING,FINISHING,IDLE"
	if strings.Join(transitions, ",") != wantTransitions {
		t.Errorf("transitions = %v, want %s", transitions, wantTransitions)
	}
	if captured != 1 {
		t.Errorf("CapturedMsg count = %d, want 1", captured)
	}
	if links != 1 {
		t.Errorf("LinkMsg count = %d, want 1", links)
	}
	// Throttled to the dashboard frame rate
	if statuses == 0 || statuses > 501 {
		t.Errorf("StatusMsg count = %d", statuses)
	}
}

func TestStatusCountdown(t *testing.T) {
	f := newFixture()
	f.link.post(bluetooth.EventConnect, "")
	f.lead.weight, f.trail.weight = 2000, 2000

	f.run(1010 * time.Millisecond)

	var last StatusMsg
	for _, msg := range f.out.msgs {
		if s, ok := msg.(StatusMsg); ok {
			last = s
		}
	}
	if last.State != capture.StateDetected {
		t.Fatalf("state = %s, want DETECTED", last.State)
	}
	if last.Countdown <= 0 || last.Countdown > config.TriggerDelay {
		t.Errorf("countdown = %v", last.Countdown)
	}
	if last.Lead != 2000 || last.Trail != 2000 {
		t.Errorf("readings = %v/%v", last.Lead, last.Trail)
	}
	if last.CaptureID == "" {
		t.Error("expected a capture id while detected")
	}
}

func TestDisconnectDuringWindowAppliedAfterDataset(t *testing.T) {
	f := newFixture()
	f.link.post(bluetooth.EventConnect, "")
	f.link.onNotify = func(payload string) {
		if payload == string(capture.CueStartSwing) {
			f.link.post(bluetooth.EventDisconnect, "")
		}
	}
	f.lead.weight, f.trail.weight = 2000, 2000

	f.run(5010 * time.Millisecond)

	if _, ok := f.link.dataset(); !ok {
		t.Fatal("dataset should still be sent")
	}
	if !f.c.Machine().Connected() {
		t.Fatal("disconnect should wait for the next step")
	}

	f.run(10 * time.Millisecond)
	if f.c.Machine().Connected() {
		t.Error("disconnect not applied")
	}
}

func TestWithMockLink(t *testing.T) {
	clock := capture.NewVirtualClock(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	link := bluetooth.NewMockLink()
	lead, trail := &plate{weight: 2000}, &plate{weight: 2000}
	c := New(Options{Lead: lead, Trail: trail, Link: link, Clock: clock})

	link.Connect()
	link.Write([]byte("30/10"))
	for i := 0; i < 501; i++ {
		clock.Advance(10 * time.Millisecond)
		c.Step()
	}

	var payloads []string
	for _, n := range link.Notifications() {
		payloads = append(payloads, string(n.Payload))
	}
	if len(payloads) != 5 || !strings.HasPrefix(payloads[4], "(") {
		t.Fatalf("notifications = %v", payloads)
	}

	// The mock central answers a dataset with its first tempo preset
	c.Step()
	if got := c.Machine().Tempo().String(); got != "21/7" {
		t.Errorf("tempo after dataset = %s, want 21/7", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture()
	f.c.interval = time.Millisecond
	f.c.lockFile = filepath.Join(t.TempDir(), "swing-plate.lock")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.c.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSecondInstanceLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swing-plate.lock")

	first := New(Options{Link: newTestLink(), LockFile: path})
	if err := first.acquire(); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer first.release()

	second := New(Options{Link: newTestLink(), LockFile: path})
	err := second.Run(context.Background())
	if !errors.Is(err, ErrLocked) {
		t.Errorf("Run() = %v, want ErrLocked", err)
	}
}

func TestSpacing(t *testing.T) {
	samples := []dataset.Sample{
		{Elapsed: 0.0},
		{Elapsed: 0.010},
		{Elapsed: 0.0225},
		{Elapsed: 0.0350},
	}
	lo, hi, mean, ok := spacing(samples)
	if !ok {
		t.Fatal("spacing should be defined for 4 samples")
	}
	if lo < 9*time.Millisecond || lo > 11*time.Millisecond {
		t.Errorf("min = %v, want ~10ms", lo)
	}
	if hi < 12*time.Millisecond || hi > 13*time.Millisecond {
		t.Errorf("max = %v, want ~12.5ms", hi)
	}
	if mean < 11*time.Millisecond || mean > 12*time.Millisecond {
		t.Errorf("mean = %v, want ~11.7ms", mean)
	}

	if _, _, _, ok := spacing(samples[:1]); ok {
		t.Error("spacing of one sample should be undefined")
	}
}

func TestDisconnectSurvivesWriteFlood(t *testing.T) {
	clock := capture.NewVirtualClock(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	link := bluetooth.NewMockLink()
	lead, trail := &plate{weight: 5000}, &plate{weight: 5000}
	c := New(Options{Lead: lead, Trail: trail, Link: link, Clock: clock})

	link.Connect()
	c.Step()
	if c.Machine().State() != capture.StateDetected {
		t.Fatalf("state = %s, want DETECTED", c.Machine().State())
	}

	for i := 0; i < 100; i++ {
		link.Write([]byte("2/3"))
	}
	link.Write([]byte("21/7"))
	link.Disconnect()
	clock.Advance(10 * time.Millisecond)
	c.Step()

	m := c.Machine()
	if m.Connected() {
		t.Error("disconnect was lost")
	}
	if m.State() != capture.StateIdle {
		t.Errorf("state = %s, want IDLE", m.State())
	}
	if _, ok := m.Anchor(); ok {
		t.Error("anchor still set after disconnect")
	}
	if m.Buffered() != 0 {
		t.Errorf("buffered = %d, want 0", m.Buffered())
	}
	if got := m.Tempo().String(); got != "21/7" {
		t.Errorf("tempo = %s, want latest write 21/7", got)
	}
}
