// Package bluetooth exposes the plate as a BLE peripheral: one service with
// a single read/write/notify characteristic carrying cue markers, tempo
// writes and datasets.
package bluetooth

import "fmt"

// EventKind identifies a link event.
type EventKind int

const (
	EventConnect EventKind = iota
	EventDisconnect
	EventWrite
)

func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventDisconnect:
		return "disconnect"
	case EventWrite:
		return "write"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered from the BLE stack to the control loop. Payload is set
// for EventWrite only.
type Event struct {
	Kind    EventKind
	Peer    string
	Payload []byte
}
