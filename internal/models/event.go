package models

import "time"

// Activity log event types.
const (
	EventSettingsCreated = "SETTINGS_CREATED"
	EventSettingsUpdated = "SETTINGS_UPDATED"
	EventSunsetResolved  = "SUNSET_RESOLVED"
	EventSunsetFailed    = "SUNSET_FAILED"
)

// Event is a single activity log entry.
type Event struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
