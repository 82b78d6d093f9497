// Package replay drives a capture machine with a recorded weight stream on
// a virtual clock, so a session can be re-examined off the plate.
package replay

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"swing-plate.klederson.com/internal/capture"
	"swing-plate.klederson.com/internal/config"
	"swing-plate.klederson.com/internal/logging"
)

// Epoch is the virtual time of offset zero.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Row is one recorded reading pair.
type Row struct {
	At    time.Duration
	Lead  float64
	Trail float64
}

// Load parses "ms,lead,trail" rows. A non-numeric first row is taken as a
// header; '#' starts a comment. Offsets must not decrease.
func Load(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var rows []Row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read recording: %w", err)
		}

		row, err := parseRow(rec)
		if err != nil {
			if line == 1 {
				continue
			}
			l, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", l, err)
		}
		if n := len(rows); n > 0 && row.At < rows[n-1].At {
			l, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: offset %v goes backwards", l, row.At)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.New("recording has no rows")
	}
	return rows, nil
}

func parseRow(rec []string) (Row, error) {
	ms, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("offset %q: %w", rec[0], err)
	}
	lead, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("lead %q: %w", rec[1], err)
	}
	trail, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	if err != nil {
		return Row{}, fmt.Errorf("trail %q: %w", rec[2], err)
	}
	return Row{
		At:    time.Duration(ms * float64(time.Millisecond)),
		Lead:  lead,
		Trail: trail,
	}, nil
}

// Notification is one payload the machine sent, at its virtual offset.
type Notification struct {
	At      time.Duration
	Payload string
}

// IsDataset reports whether the payload is an encoded dataset rather than a
// cue marker.
func (n Notification) IsDataset() bool {
	return strings.HasPrefix(n.Payload, "(")
}

// Result is everything a replay sent to the central.
type Result struct {
	Tempo         string
	Duration      time.Duration
	Notifications []Notification
}

// Datasets returns the encoded datasets in order.
func (r *Result) Datasets() []string {
	var out []string
	for _, n := range r.Notifications {
		if n.IsDataset() {
			out = append(out, n.Payload)
		}
	}
	return out
}

// Options tunes a replay.
type Options struct {
	Tempo  string // "<back>/<down>" written before the first tick; optional
	Logger *logging.Logger
}

// Run replays rows through a fresh, connected machine. Readings are held
// between rows; the loop ticks every config.LoopDelay until the last row.
func Run(rows []Row, opts Options) (*Result, error) {
	if len(rows) == 0 {
		return nil, errors.New("recording has no rows")
	}

	clock := capture.NewVirtualClock(Epoch)
	tr := &track{rows: rows, clock: clock}
	rec := &recorder{clock: clock}

	m := capture.New(capture.Options{
		Lead:   plate{tr, true},
		Trail:  plate{tr, false},
		Link:   rec,
		Clock:  clock,
		Logger: opts.Logger,
	})
	m.Connect()
	if opts.Tempo != "" && !m.ConfigWrite([]byte(opts.Tempo)) {
		return nil, fmt.Errorf("tempo %q: want <back>/<down>", opts.Tempo)
	}

	last := rows[len(rows)-1].At
	for clock.Now().Sub(Epoch) <= last {
		m.Tick()
		clock.Advance(config.LoopDelay)
	}

	return &Result{
		Tempo:         m.Tempo().String(),
		Duration:      clock.Now().Sub(Epoch),
		Notifications: rec.sent,
	}, nil
}

// track looks up the held reading at the clock's current offset.
type track struct {
	rows  []Row
	clock capture.Clock
	pos   int
}

func (t *track) current() (Row, bool) {
	at := t.clock.Now().Sub(Epoch)
	for t.pos+1 < len(t.rows) && t.rows[t.pos+1].At <= at {
		t.pos++
	}
	if t.rows[t.pos].At > at {
		return Row{}, false
	}
	return t.rows[t.pos], true
}

type plate struct {
	t    *track
	lead bool
}

func (p plate) Ready() bool {
	_, ok := p.t.current()
	return ok
}

func (p plate) Read() float64 {
	row, _ := p.t.current()
	if p.lead {
		return row.Lead
	}
	return row.Trail
}

type recorder struct {
	clock capture.Clock
	sent  []Notification
}

func (r *recorder) Notify(payload []byte) error {
	r.sent = append(r.sent, Notification{
		At:      r.clock.Now().Sub(Epoch),
		Payload: string(payload),
	})
	return nil
}
