// Package device runs the plate: it owns the capture machine, applies link
// events between ticks and reports activity to the dashboard.
package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofrs/flock"

	"swing-plate.klederson.com/internal/bluetooth"
	"swing-plate.klederson.com/internal/capture"
	"swing-plate.klederson.com/internal/config"
	"swing-plate.klederson.com/internal/dataset"
	"swing-plate.klederson.com/internal/logging"
)

// ErrLocked is returned by Run when another instance holds the lock file.
var ErrLocked = errors.New("another swing-plate instance is running")

// Link is the central side of the BLE connection. Drain returns the events
// received since the previous call, lifecycle first.
type Link interface {
	Drain() []bluetooth.Event
	Notify(payload []byte) error
}

// Sender receives dashboard messages. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Options wires a Controller.
type Options struct {
	Lead     capture.Source
	Trail    capture.Source
	Link     Link
	Clock    capture.Clock
	Logger   *logging.Logger
	LockFile string        // empty disables locking
	Interval time.Duration // defaults to config.LoopDelay
}

// Controller drives one capture.Machine from a single goroutine.
type Controller struct {
	machine  *capture.Machine
	link     Link
	clock    capture.Clock
	log      *logging.Logger
	program  Sender
	interval time.Duration

	lockFile string
	lock     *flock.Flock

	lastStatus time.Time
}

// New creates a Controller and its machine.
func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = capture.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Interval <= 0 {
		opts.Interval = config.LoopDelay
	}

	c := &Controller{
		link:     opts.Link,
		clock:    opts.Clock,
		log:      opts.Logger.WithComponent("device"),
		interval: opts.Interval,
		lockFile: opts.LockFile,
	}
	c.machine = capture.New(capture.Options{
		Lead:     opts.Lead,
		Trail:    opts.Trail,
		Link:     opts.Link,
		Clock:    opts.Clock,
		Logger:   opts.Logger,
		Observer: c,
	})
	return c
}

// SetProgram attaches the dashboard. Call before Run.
func (c *Controller) SetProgram(p Sender) {
	c.program = p
}

// Machine exposes the state machine for inspection.
func (c *Controller) Machine() *capture.Machine { return c.machine }

// Run holds the instance lock and steps the machine every interval until
// ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()

	c.log.Info("control loop started", "interval", c.interval.String())

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("control loop stopped")
			return nil
		case <-ticker.C:
			c.Step()
		}
	}
}

// Step applies pending link events, then runs one machine tick.
func (c *Controller) Step() {
	c.drain()
	c.machine.Tick()
	c.status()
}

func (c *Controller) drain() {
	for _, ev := range c.link.Drain() {
		c.handle(ev)
	}
}

func (c *Controller) handle(ev bluetooth.Event) {
	switch ev.Kind {
	case bluetooth.EventConnect:
		c.machine.Connect()
	case bluetooth.EventDisconnect:
		c.machine.Disconnect()
	case bluetooth.EventWrite:
		c.machine.ConfigWrite(ev.Payload)
	}
	c.log.Debug("link event", "event", ev.Kind.String(), "peer", ev.Peer)
	c.send(LinkMsg{Event: ev, At: c.clock.Now()})
}

func (c *Controller) status() {
	if c.program == nil {
		return
	}
	now := c.clock.Now()
	if now.Sub(c.lastStatus) < time.Second/time.Duration(config.TargetFPS) {
		return
	}
	c.lastStatus = now

	m := c.machine
	lead, trail := m.Last()
	msg := StatusMsg{
		At:        now,
		State:     m.State(),
		Connected: m.Connected(),
		Lead:      lead,
		Trail:     trail,
		Tempo:     m.Tempo(),
		Buffered:  m.Buffered(),
		CaptureID: m.CaptureID(),
	}
	if anchor, ok := m.Anchor(); ok {
		if left := config.TriggerDelay - now.Sub(anchor); left > 0 {
			msg.Countdown = left
		}
	}
	c.program.Send(msg)
}

func (c *Controller) send(msg tea.Msg) {
	if c.program != nil {
		c.program.Send(msg)
	}
}

// Transition implements capture.Observer.
func (c *Controller) Transition(from, to capture.State) {
	c.send(TransitionMsg{From: from, To: to})
}

// Cue implements capture.Observer.
func (c *Controller) Cue(cue capture.Cue, at time.Time) {
	c.send(CueMsg{Cue: cue, At: at})
}

// Captured implements capture.Observer.
func (c *Controller) Captured(samples []dataset.Sample) {
	if lo, hi, mean, ok := spacing(samples); ok {
		c.log.Debug("sample spacing",
			"samples", len(samples),
			"min", lo.String(), "max", hi.String(), "mean", mean.String())
	}
	c.send(CapturedMsg{Samples: samples, At: c.clock.Now()})
}

// spacing returns the min, max and mean interval between consecutive
// samples.
func spacing(samples []dataset.Sample) (lo, hi, mean time.Duration, ok bool) {
	if len(samples) < 2 {
		return 0, 0, 0, false
	}
	var total time.Duration
	for i := 1; i < len(samples); i++ {
		d := time.Duration((samples[i].Elapsed - samples[i-1].Elapsed) * float64(time.Second))
		if i == 1 || d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
		total += d
	}
	return lo, hi, total / time.Duration(len(samples)-1), true
}

func (c *Controller) acquire() error {
	if c.lockFile == "" {
		return nil
	}
	c.lock = flock.New(c.lockFile)
	ok, err := c.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", c.lockFile, err)
	}
	if !ok {
		return fmt.Errorf("%w (lock file %s)", ErrLocked, c.lockFile)
	}
	return nil
}

func (c *Controller) release() {
	if c.lock == nil {
		return
	}
	if err := c.lock.Unlock(); err != nil {
		c.log.Warn("release lock", "error", err)
	}
}
