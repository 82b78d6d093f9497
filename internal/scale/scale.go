// Package scale provides the two weight plates as polled sources: a serial
// bridge to the HX711 converters and a synthetic pair for demo mode.
package scale

import "sync"

// Channel is one plate of a pair. It satisfies capture.Source.
type Channel struct {
	mu      sync.Mutex
	name    string
	poll    func() // refreshes the owning pair; may be nil
	weight  float64
	fresh   bool
	samples uint64
}

func newChannel(name string, poll func()) *Channel {
	return &Channel{name: name, poll: poll}
}

// Name returns "lead" or "trail".
func (c *Channel) Name() string { return c.name }

// Ready polls the converter and reports whether a reading arrived since the
// previous Ready call.
func (c *Channel) Ready() bool {
	if c.poll != nil {
		c.poll()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ok := c.fresh
	c.fresh = false
	return ok
}

// Read returns the latest weight in grams, fresh or not.
func (c *Channel) Read() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.weight
}

// Samples returns how many readings the channel has received.
func (c *Channel) Samples() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.samples
}

func (c *Channel) store(w float64) {
	c.mu.Lock()
	c.weight = w
	c.fresh = true
	c.samples++
	c.mu.Unlock()
}
