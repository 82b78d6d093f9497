package scale

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"swing-plate.klederson.com/internal/logging"
)

// ErrNoSignal means the bridge opened but never produced a frame. It is the
// serial equivalent of the HX711 signal timeout and is fatal at startup.
var ErrNoSignal = errors.New("no frame from load-cell bridge, check wiring")

// SerialBridge reads "lead,trail" frames (calibrated grams, one per line)
// from a microcontroller that drives both HX711 converters.
type SerialBridge struct {
	port  io.ReadCloser
	lead  *Channel
	trail *Channel
	log   *logging.Logger

	first     chan struct{}
	firstOnce sync.Once
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// OpenSerial opens the bridge on the named port.
func OpenSerial(name string, baud int, logger *logging.Logger) (*SerialBridge, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open load-cell bridge %s: %w", name, err)
	}
	// Drop whatever the bridge printed before we attached
	_ = port.ResetInputBuffer()

	return NewBridge(port, logger), nil
}

// NewBridge starts reading frames from r.
func NewBridge(r io.ReadCloser, logger *logging.Logger) *SerialBridge {
	if logger == nil {
		logger = logging.Nop()
	}
	b := &SerialBridge{
		port:  r,
		log:   logger.WithComponent("scale"),
		first: make(chan struct{}),
		done:  make(chan struct{}),
	}
	b.lead = newChannel("lead", nil)
	b.trail = newChannel("trail", nil)

	go b.readLoop()
	return b
}

// Lead returns the lead (front) plate.
func (b *SerialBridge) Lead() *Channel { return b.lead }

// Trail returns the trail (rear) plate.
func (b *SerialBridge) Trail() *Channel { return b.trail }

// WaitReady blocks until the first frame arrives.
func (b *SerialBridge) WaitReady(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-b.first:
		return nil
	case <-b.done:
		if err := b.Err(); err != nil {
			return fmt.Errorf("load-cell bridge: %w", err)
		}
		return ErrNoSignal
	case <-timer.C:
		return ErrNoSignal
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *SerialBridge) readLoop() {
	defer close(b.done)

	sc := bufio.NewScanner(b.port)
	for sc.Scan() {
		line := sc.Text()
		lead, trail, err := ParseFrame(line)
		if err != nil {
			b.log.Debug("skipped bridge line", "line", line, "error", err)
			continue
		}
		b.lead.store(lead)
		b.trail.store(trail)
		b.firstOnce.Do(func() { close(b.first) })
	}

	if err := sc.Err(); err != nil {
		b.mu.Lock()
		b.err = err
		b.mu.Unlock()
		b.log.Warn("load-cell bridge read failed", "error", err)
	}
}

// Err returns the error that stopped the reader, if any.
func (b *SerialBridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Close closes the port and waits for the reader to exit.
func (b *SerialBridge) Close() error {
	err := b.port.Close()
	<-b.done
	return err
}

var errComment = errors.New("bridge comment")

// ParseFrame parses one bridge line. Lines starting with '#' are the
// bridge's own diagnostics.
func ParseFrame(line string) (lead, trail float64, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return 0, 0, errComment
	}
	l, t, ok := strings.Cut(line, ",")
	if !ok {
		return 0, 0, fmt.Errorf("frame %q: missing ','", line)
	}
	lead, err = strconv.ParseFloat(strings.TrimSpace(l), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("frame %q: lead: %w", line, err)
	}
	trail, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("frame %q: trail: %w", line, err)
	}
	return lead, trail, nil
}
