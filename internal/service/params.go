package service

import "time"

// PreferenceInput is a settings write as received from the client.
type PreferenceInput struct {
	UserTemp      float64
	UserLight     string // "HH:MM:SS" or "sunset"
	LightDuration string // e.g. "1h30m"
	UserID        int    // authenticated writer; 0 when auth is off
}

// SampleInput is what the device reports; the server adds the time.
type SampleInput struct {
	Temperature float64
	Presence    bool
}

// LogFilter selects activity log entries.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string
}
