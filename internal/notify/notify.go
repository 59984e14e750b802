// Package notify pushes fresh fan/light decisions to the room device.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"smart_hub/internal/models"
)

// DefaultTopic is used by both the MQTT and Kafka publishers.
const DefaultTopic = "smarthub/decision"

// Publisher delivers decisions. Publishing failures must not fail the request
// that triggered them.
type Publisher interface {
	Publish(ctx context.Context, u Update) error
	Close() error
}

// Update is one decision derived from a freshly recorded sample.
type Update struct {
	At       time.Time
	Sample   models.Sample
	Decision models.Decision
}

// Payload is the wire format shared by all publishers.
type Payload struct {
	Timestamp  string `json:"timestamp"`
	SampleID   int64  `json:"sample_id"`
	SampleTime string `json:"sample_time"`
	Fan        bool   `json:"fan"`
	Light      bool   `json:"light"`
}

// FormatPayload encodes u as JSON.
func FormatPayload(u Update) ([]byte, error) {
	return json.Marshal(Payload{
		Timestamp:  u.At.UTC().Format(time.RFC3339),
		SampleID:   u.Sample.ID,
		SampleTime: u.Sample.Timestamp,
		Fan:        u.Decision.Fan,
		Light:      u.Decision.Light,
	})
}

// Nop discards updates.
type Nop struct{}

func (Nop) Publish(context.Context, Update) error { return nil }
func (Nop) Close() error                          { return nil }
