package capture

// State is the capture cycle phase.
type State int

const (
	StateIdle      State = iota // Waiting for both plates to load
	StateDetected               // Countdown running, nothing buffered yet
	StateRecording              // Pre-roll buffering before START_SWING
	StateFinishing              // Uninterruptible swing capture window
)

func (s State) String() string {
	switch s {
	case StateDetected:
		return "DETECTED"
	case StateRecording:
		return "RECORDING"
	case StateFinishing:
		return "FINISHING"
	default:
		return "IDLE"
	}
}

// Cue is a short text marker notified to the central to drive audio and
// visual feedback.
type Cue string

const (
	CueWeightDetected Cue = "WEIGHT_DETECTED"
	CueStartSwing     Cue = "START_SWING"
	CueSteppedOff     Cue = "STEPPED_OFF"
	CueTopBeep        Cue = "TOP_BEEP"
	CueImpactBeep     Cue = "IMPACT_BEEP"
)
