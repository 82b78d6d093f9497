// Package capture implements the swing capture cycle: stance detection on
// both plates, the countdown, pre-roll buffering, the timed swing window with
// its tempo beeps, and delivery of the captured dataset.
package capture

import (
	"time"

	"github.com/google/uuid"

	"swing-plate.klederson.com/internal/config"
	"swing-plate.klederson.com/internal/dataset"
	"swing-plate.klederson.com/internal/logging"
	"swing-plate.klederson.com/internal/tempo"
)

// Source is one plate. Ready polls the converter and reports whether a fresh
// reading is available; Read returns the latest calibrated weight in grams.
type Source interface {
	Ready() bool
	Read() float64
}

// Notifier delivers cue markers and the encoded dataset to the central.
type Notifier interface {
	Notify(payload []byte) error
}

// Observer receives machine activity for display. All calls happen on the
// goroutine driving the machine.
type Observer interface {
	Transition(from, to State)
	Cue(c Cue, at time.Time)
	Captured(samples []dataset.Sample)
}

// Options wires a Machine to its collaborators.
type Options struct {
	Lead     Source
	Trail    Source
	Link     Notifier
	Clock    Clock           // defaults to SystemClock
	Logger   *logging.Logger // defaults to a discarding logger
	Observer Observer        // optional
}

// Machine is the capture state machine. It is not safe for concurrent use:
// a single goroutine calls Tick and the lifecycle methods.
type Machine struct {
	lead     Source
	trail    Source
	link     Notifier
	clock    Clock
	log      *logging.Logger
	observer Observer

	connected bool
	tempo     tempo.Config

	state     State
	anchor    time.Time // zero while no countdown is running
	buf       dataset.Buffer
	captureID string
	cycleLog  *logging.Logger

	lastLead  float64
	lastTrail float64
}

// New creates an idle, disconnected Machine.
func New(opts Options) *Machine {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	log := opts.Logger.WithComponent("capture")
	return &Machine{
		lead:     opts.Lead,
		trail:    opts.Trail,
		link:     opts.Link,
		clock:    opts.Clock,
		log:      log,
		cycleLog: log,
		observer: opts.Observer,
	}
}

// Connect enables ticking.
func (m *Machine) Connect() {
	m.connected = true
	m.log.Info("central connected")
}

// Disconnect forces the machine back to Idle and discards any capture.
func (m *Machine) Disconnect() {
	m.connected = false
	if m.state != StateIdle {
		m.cycleLog.Info("central disconnected, capture discarded",
			"state", m.state.String(), "samples", m.buf.Len())
	} else {
		m.log.Info("central disconnected")
	}
	m.reset()
}

// ConfigWrite applies an inbound "<back>/<down>" write. Rejected writes
// leave the tempo unchanged.
func (m *Machine) ConfigWrite(payload []byte) bool {
	if !m.tempo.Apply(payload) {
		m.log.Debug("ignored config write", "payload", string(payload))
		return false
	}
	m.log.Info("tempo set", "back", m.tempo.Back, "down", m.tempo.Down)
	return true
}

// Tick runs one control-loop step. It reports whether both plates had a
// reading ready; a tick without readings changes nothing.
func (m *Machine) Tick() bool {
	if !m.connected {
		if m.state != StateIdle || m.buf.Len() > 0 {
			m.reset()
		}
		return false
	}

	if !m.lead.Ready() || !m.trail.Ready() {
		return false
	}
	lead, trail := m.lead.Read(), m.trail.Read()
	m.lastLead, m.lastTrail = lead, trail
	now := m.clock.Now()

	if !occupied(lead, trail) {
		if m.state != StateIdle {
			m.emit(CueSteppedOff)
			m.cycleLog.Info("stepped off early", "lead", lead, "trail", trail)
			m.reset()
		}
		return true
	}

	if m.state == StateIdle {
		m.anchor = now
		m.captureID = uuid.NewString()
		m.cycleLog = m.log.WithCapture(m.captureID)
		m.setState(StateDetected)
		m.cycleLog.Info("weight detected, starting countdown", "lead", lead, "trail", trail)
		m.emit(CueWeightDetected)
	}

	elapsed := now.Sub(m.anchor)
	switch {
	case elapsed >= config.TriggerDelay:
		m.finish(now)
	case elapsed >= config.PreRollDelay:
		if m.state == StateDetected {
			m.setState(StateRecording)
			m.cycleLog.Debug("pre-roll recording started")
		}
		m.record(now, lead, trail)
	}
	return true
}

type timedCue struct {
	cue Cue
	at  time.Time
}

// finish runs the swing window. It blocks until the window closes and the
// dataset has been sent, then returns the machine to Idle.
func (m *Machine) finish(start time.Time) {
	m.emit(CueStartSwing)
	m.setState(StateFinishing)

	back := m.tempo.BackDelay(config.FrameDuration)
	down := m.tempo.DownDelay(config.FrameDuration)
	end := start.Add(back + down + config.PostSwingSettle)
	cues := []timedCue{
		{CueTopBeep, start.Add(back)},
		{CueImpactBeep, start.Add(back + down)},
	}
	m.cycleLog.Info("swing started", "tempo", m.tempo.String(),
		"window_ms", end.Sub(start).Milliseconds())

	next := start
	for {
		now := m.clock.Now()
		for len(cues) > 0 && !now.Before(cues[0].at) {
			m.emit(cues[0].cue)
			cues = cues[1:]
		}
		if !now.Before(end) {
			break
		}
		if !now.Before(next) {
			// Plate state is ignored here; the window must not be cut short.
			m.lead.Ready()
			m.trail.Ready()
			lead, trail := m.lead.Read(), m.trail.Read()
			m.lastLead, m.lastTrail = lead, trail
			m.record(now, lead, trail)
			for !now.Before(next) {
				next = next.Add(config.SampleInterval)
			}
		}

		wake := next
		if end.Before(wake) {
			wake = end
		}
		if len(cues) > 0 && cues[0].at.Before(wake) {
			wake = cues[0].at
		}
		m.clock.Sleep(wake.Sub(now))
	}

	samples := m.buf.Samples()
	if err := m.link.Notify(dataset.Encode(samples)); err != nil {
		m.cycleLog.Warn("dataset notify failed", "error", err)
	} else {
		m.cycleLog.Info("data sent", "samples", len(samples))
	}
	if m.observer != nil {
		m.observer.Captured(samples)
	}
	m.reset()
}

func (m *Machine) record(now time.Time, lead, trail float64) {
	m.buf.Append(dataset.Sample{
		Elapsed: (now.Sub(m.anchor) - config.PreRollDelay).Seconds(),
		Lead:    lead,
		Trail:   trail,
	})
}

func (m *Machine) emit(c Cue) {
	if err := m.link.Notify([]byte(c)); err != nil {
		m.cycleLog.Warn("cue notify failed", "cue", string(c), "error", err)
	}
	if m.observer != nil {
		m.observer.Cue(c, m.clock.Now())
	}
}

func (m *Machine) setState(s State) {
	if s == m.state {
		return
	}
	from := m.state
	m.state = s
	if m.observer != nil {
		m.observer.Transition(from, s)
	}
}

func (m *Machine) reset() {
	m.setState(StateIdle)
	m.anchor = time.Time{}
	m.buf.Reset()
	m.captureID = ""
	m.cycleLog = m.log
}

func occupied(lead, trail float64) bool {
	return lead > config.PresenceThreshold && trail > config.PresenceThreshold
}

// State returns the current phase.
func (m *Machine) State() State { return m.state }

// Connected reports whether a central is connected.
func (m *Machine) Connected() bool { return m.connected }

// Tempo returns the current tempo.
func (m *Machine) Tempo() tempo.Config { return m.tempo }

// Anchor returns the countdown start and whether a countdown is running.
func (m *Machine) Anchor() (time.Time, bool) {
	return m.anchor, !m.anchor.IsZero()
}

// Buffered returns the number of samples held for the current cycle.
func (m *Machine) Buffered() int { return m.buf.Len() }

// Last returns the most recent plate readings.
func (m *Machine) Last() (lead, trail float64) { return m.lastLead, m.lastTrail }

// CaptureID identifies the running cycle in the log; empty when Idle.
func (m *Machine) CaptureID() string { return m.captureID }
