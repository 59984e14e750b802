package models

import "time"

// Sample is one reading appended by the device.
type Sample struct {
	ID          int64     `json:"id"`
	Temperature float64   `json:"temperature"`
	Presence    bool      `json:"presence"`
	Timestamp   string    `json:"timestamp"` // local wall clock, "HH:MM:SS"
	RecordedAt  time.Time `json:"recorded_at"`
}

// Decision is the derived on/off state of the room devices.
type Decision struct {
	Fan   bool `json:"fan"`
	Light bool `json:"light"`
}
