package bluetooth

import "sync"

// Queue holds link events until the control loop drains them. Connect and
// disconnect are never dropped; pending writes collapse to the latest one.
// It is safe for concurrent use and the zero value is ready.
type Queue struct {
	mu        sync.Mutex
	lifecycle []Event
	write     *Event
}

// Post records ev. It never blocks.
func (q *Queue) Post(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if ev.Kind == EventWrite {
		q.write = &ev
		return
	}
	// A repeated connect or disconnect carries no new information
	if n := len(q.lifecycle); n > 0 && q.lifecycle[n-1].Kind == ev.Kind {
		q.lifecycle[n-1] = ev
		return
	}
	q.lifecycle = append(q.lifecycle, ev)
}

// Drain returns the pending lifecycle events in arrival order followed by
// the latest write, and empties the queue.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.lifecycle) == 0 && q.write == nil {
		return nil
	}
	out := q.lifecycle
	q.lifecycle = nil
	if q.write != nil {
		out = append(out, *q.write)
		q.write = nil
	}
	return out
}
