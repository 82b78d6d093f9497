package config

import "time"

const (
	// Presence detection
	PresenceThreshold = 1000.0 // Minimum weight per plate to count as occupied (grams)

	// Countdown
	PreRollDelay = 4000 * time.Millisecond // Buffering starts this long after both plates load
	TriggerDelay = 5000 * time.Millisecond // START_SWING fires this long after both plates load

	// Capture window
	SampleInterval  = 12500 * time.Microsecond // 80 samples per second
	FrameDuration   = 33 * time.Millisecond    // One tempo frame (~30 fps video)
	PostSwingSettle = 1000 * time.Millisecond  // Extra capture after the impact beep

	// Control loop
	LoopDelay = 10 * time.Millisecond // Pause between ticks

	// BLE identity
	DeviceName         = "ESP32_PRESSURE"
	ServiceUUID        = "4fafc201-1fb5-459e-8fcc-c5c9c331914b"
	CharacteristicUUID = "beb5483e-36e1-4688-b7f5-ea07361b26a8"

	// Load-cell bridge
	DefaultBaudRate = 115200
	StartupTimeout  = 3 * time.Second // First frame must arrive within this

	// Dashboard
	TargetFPS      = 30      // Target frames per second
	HistoryLen     = 160     // Live weight samples kept for the sparkline
	CueLogLen      = 8       // Cues kept in the dashboard log
	GaugeFullScale = 60000.0 // Gauge full scale (grams)

	// App
	AppName    = "SWING-PLATE"
	AppVersion = "1.0"
)
