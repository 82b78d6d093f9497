package bluetooth

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// Tempo presets the mock central cycles through, all at the 3:1 ratio.
var mockTempos = []string{"21/7", "24/8", "18/6", "27/9"}

const (
	mockPeer         = "DE:MO:00:00:00:01"
	mockConnectAfter = 500 * time.Millisecond
	mockHistory      = 64
)

// Notification is one payload the mock central received.
type Notification struct {
	At      time.Time
	Payload []byte
}

// MockLink stands in for the phone app in demo mode and tests. It connects,
// sets a tempo and rotates to the next preset after every dataset.
type MockLink struct {
	queue  Queue
	cancel context.CancelFunc

	mu            sync.Mutex
	notifications []Notification
	next          int
}

// NewMockLink creates a disconnected mock central.
func NewMockLink() *MockLink {
	return &MockLink{}
}

// Start connects after a short delay and writes the first tempo.
func (l *MockLink) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	go func() {
		timer := time.NewTimer(mockConnectAfter)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		l.Connect()
		l.writeNextTempo()
	}()
}

// Stop cancels a pending connect.
func (l *MockLink) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
}

// Connect simulates a central connecting.
func (l *MockLink) Connect() { l.queue.Post(Event{Kind: EventConnect, Peer: mockPeer}) }

// Disconnect simulates the central dropping.
func (l *MockLink) Disconnect() { l.queue.Post(Event{Kind: EventDisconnect, Peer: mockPeer}) }

// Write simulates the central writing the characteristic.
func (l *MockLink) Write(payload []byte) {
	l.queue.Post(Event{Kind: EventWrite, Peer: mockPeer, Payload: append([]byte(nil), payload...)})
}

func (l *MockLink) writeNextTempo() {
	l.mu.Lock()
	t := mockTempos[l.next%len(mockTempos)]
	l.next++
	l.mu.Unlock()

	l.Write([]byte(t))
}

// Drain returns the link events posted since the previous call.
func (l *MockLink) Drain() []Event { return l.queue.Drain() }

// Notify records the payload. A dataset makes the central pick a new tempo.
func (l *MockLink) Notify(payload []byte) error {
	l.mu.Lock()
	l.notifications = append(l.notifications, Notification{
		At:      time.Now(),
		Payload: append([]byte(nil), payload...),
	})
	if len(l.notifications) > mockHistory {
		l.notifications = l.notifications[len(l.notifications)-mockHistory:]
	}
	l.mu.Unlock()

	if bytes.HasPrefix(payload, []byte("(")) {
		l.writeNextTempo()
	}
	return nil
}

// Notifications returns the most recent payloads, oldest first.
func (l *MockLink) Notifications() []Notification {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notification, len(l.notifications))
	copy(out, l.notifications)
	return out
}
