package app

import "time"

// TickMsg triggers a frame update.
type TickMsg time.Time

// ErrorMsg reports a fatal error from the control loop; the dashboard shows
// it and quits.
type ErrorMsg struct {
	Err error
}
