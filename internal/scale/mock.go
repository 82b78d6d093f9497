package scale

import (
	"context"
	"math"
	"math/rand"
	"time"

	"swing-plate.klederson.com/internal/config"
)

// Demo cycle timing, seconds from the start of a cycle.
const (
	mockStepOn     = 2.0  // golfer steps onto the plates
	mockSwingAt    = 7.0  // back-swing begins (just after START_SWING)
	mockStepOff    = 10.0 // golfer walks away
	mockEarlyOff   = 5.0  // step-off time for an aborted cycle
	mockCycleLen   = 12.0
	mockAbortRatio = 0.2 // share of cycles that step off early
)

// MockScale synthesises a golfer stepping on, swinging and stepping off, at
// the converter rate. Used in demo mode.
type MockScale struct {
	lead  *Channel
	trail *Channel

	mass    float64 // grams
	phase   float64
	early   bool
	started time.Time
	cancel  context.CancelFunc
}

// NewMockScale creates a demo plate pair with a random golfer.
func NewMockScale() *MockScale {
	return &MockScale{
		lead:  newChannel("lead", nil),
		trail: newChannel("trail", nil),
		mass:  65000 + rand.Float64()*30000, // 65-95 kg
		phase: rand.Float64() * 2 * math.Pi,
	}
}

// Lead returns the lead (front) plate.
func (s *MockScale) Lead() *Channel { return s.lead }

// Trail returns the trail (rear) plate.
func (s *MockScale) Trail() *Channel { return s.trail }

// Start begins producing readings in a goroutine.
func (s *MockScale) Start(ctx context.Context) {
	s.started = time.Now()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.loop(ctx)
}

func (s *MockScale) loop(ctx context.Context) {
	ticker := time.NewTicker(config.SampleInterval)
	defer ticker.Stop()

	cycle := -1
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t := now.Sub(s.started).Seconds()
			if n := int(t / mockCycleLen); n != cycle {
				cycle = n
				s.early = rand.Float64() < mockAbortRatio
			}
			lead, trail := s.profile(math.Mod(t, mockCycleLen), t)
			s.lead.store(lead + noise())
			s.trail.store(trail + noise())
		}
	}
}

// profile returns the noiseless plate weights at cycle time ct. t is the
// absolute time used for the stance sway.
func (s *MockScale) profile(ct, t float64) (lead, trail float64) {
	off := mockStepOff
	if s.early {
		off = mockEarlyOff
	}
	if ct < mockStepOn || ct >= off {
		return 0, 0
	}

	// Settle onto the plates over half a second
	load := math.Min(1, (ct-mockStepOn)/0.5)
	share := 0.5 + 0.04*math.Sin(2*math.Pi*0.4*t+s.phase)

	if ct >= mockSwingAt {
		share = swingShare(ct - mockSwingAt)
	}
	return s.mass * load * share, s.mass * load * (1 - share)
}

// swingShare is the lead-foot share of body weight dt seconds into the
// swing: shift back onto the trail foot, then drive onto the lead foot and
// hold the finish.
func swingShare(dt float64) float64 {
	switch {
	case dt < 0.7: // back-swing
		return 0.5 - 0.2*dt/0.7
	case dt < 1.0: // down-swing
		return 0.3 + 0.55*(dt-0.7)/0.3
	default: // finish
		return 0.85
	}
}

func noise() float64 {
	return (rand.Float64() - 0.5) * 40
}

// Stop halts the generator.
func (s *MockScale) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}
