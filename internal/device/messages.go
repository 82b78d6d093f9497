package device

import (
	"time"

	"swing-plate.klederson.com/internal/bluetooth"
	"swing-plate.klederson.com/internal/capture"
	"swing-plate.klederson.com/internal/dataset"
	"swing-plate.klederson.com/internal/tempo"
)

// StatusMsg is a periodic snapshot of the plate for the dashboard.
type StatusMsg struct {
	At        time.Time
	State     capture.State
	Connected bool
	Lead      float64
	Trail     float64
	Tempo     tempo.Config
	Countdown time.Duration // time left until START_SWING; zero when idle
	Buffered  int
	CaptureID string
}

// TransitionMsg reports a phase change.
type TransitionMsg struct {
	From, To capture.State
}

// CueMsg reports a cue marker sent to the central.
type CueMsg struct {
	Cue capture.Cue
	At  time.Time
}

// CapturedMsg carries a dataset that was just sent.
type CapturedMsg struct {
	Samples []dataset.Sample
	At      time.Time
}

// LinkMsg reports central activity.
type LinkMsg struct {
	Event bluetooth.Event
	At    time.Time
}
