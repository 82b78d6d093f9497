package bluetooth

import (
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"

	"swing-plate.klederson.com/internal/logging"
)

// Options configures the GATT server.
type Options struct {
	Name               string
	ServiceUUID        string
	CharacteristicUUID string
	Logger             *logging.Logger
}

// Peripheral advertises the plate service and relays central activity as
// Events. BLE callbacks never block; the control loop drains the queue.
type Peripheral struct {
	adapter        *bluetooth.Adapter
	adv            *bluetooth.Advertisement
	char           bluetooth.Characteristic
	write          func(p []byte) (int, error) // char.Write
	name           string
	service        bluetooth.UUID
	characteristic bluetooth.UUID
	log            *logging.Logger

	queue Queue

	mu        sync.Mutex
	connected bool
	peer      string
	notifying bool
}

// NewPeripheral validates the UUIDs. Nothing touches the adapter until Start.
func NewPeripheral(opts Options) (*Peripheral, error) {
	svc, err := bluetooth.ParseUUID(opts.ServiceUUID)
	if err != nil {
		return nil, fmt.Errorf("service uuid %q: %w", opts.ServiceUUID, err)
	}
	chr, err := bluetooth.ParseUUID(opts.CharacteristicUUID)
	if err != nil {
		return nil, fmt.Errorf("characteristic uuid %q: %w", opts.CharacteristicUUID, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	p := &Peripheral{
		adapter:        bluetooth.DefaultAdapter,
		name:           opts.Name,
		service:        svc,
		characteristic: chr,
		log:            logger.WithComponent("ble"),
	}
	p.write = p.char.Write
	return p, nil
}

// Start enables the adapter, registers the service and begins advertising.
func (p *Peripheral) Start() error {
	if err := p.adapter.Enable(); err != nil {
		return fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	p.adapter.SetConnectHandler(p.onConnect)

	err := p.adapter.AddService(&bluetooth.Service{
		UUID: p.service,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &p.char,
				UUID:   p.characteristic,
				Value:  []byte{},
				Flags: bluetooth.CharacteristicReadPermission |
					bluetooth.CharacteristicWritePermission |
					bluetooth.CharacteristicNotifyPermission,
				WriteEvent: p.onWrite,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("register service: %w", err)
	}

	p.adv = p.adapter.DefaultAdvertisement()
	err = p.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    p.name,
		ServiceUUIDs: []bluetooth.UUID{p.service},
	})
	if err != nil {
		return fmt.Errorf("configure advertisement: %w", err)
	}
	if err := p.adv.Start(); err != nil {
		return fmt.Errorf("start advertising: %w", err)
	}

	p.log.Info("advertising", "name", p.name, "service", p.service.String())
	return nil
}

func (p *Peripheral) onConnect(device bluetooth.Device, connected bool) {
	peer := device.Address.String()

	p.mu.Lock()
	changed := p.connected != connected
	p.connected = connected
	if connected {
		p.peer = peer
	} else {
		p.peer = ""
	}
	p.mu.Unlock()

	if !changed {
		return
	}
	if connected {
		p.queue.Post(Event{Kind: EventConnect, Peer: peer})
		return
	}

	p.queue.Post(Event{Kind: EventDisconnect, Peer: peer})

	// Become discoverable again for the next central
	if err := p.adv.Start(); err != nil {
		p.log.Debug("restart advertising", "error", err)
	}
}

func (p *Peripheral) onWrite(client bluetooth.Connection, offset int, value []byte) {
	p.mu.Lock()
	peer, echo := p.peer, p.notifying
	p.mu.Unlock()

	// BlueZ reports our own characteristic updates as writes
	if echo {
		return
	}

	payload := make([]byte, len(value))
	copy(payload, value)
	p.queue.Post(Event{Kind: EventWrite, Peer: peer, Payload: payload})
}

// Drain returns the link events received since the previous call.
func (p *Peripheral) Drain() []Event { return p.queue.Drain() }

// Notify sets the characteristic value and notifies subscribers.
func (p *Peripheral) Notify(payload []byte) error {
	p.mu.Lock()
	p.notifying = true
	p.mu.Unlock()

	_, err := p.write(payload)

	p.mu.Lock()
	p.notifying = false
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("notify %d bytes: %w", len(payload), err)
	}
	return nil
}

// Connected reports whether a central is attached.
func (p *Peripheral) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Stop halts advertising.
func (p *Peripheral) Stop() {
	if p.adv != nil {
		_ = p.adv.Stop()
	}
}
