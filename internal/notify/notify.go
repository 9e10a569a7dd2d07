// Package notify publishes reading changes to an MQTT broker.
package notify

import (
	"encoding/json"
	"time"

	"github.com/starford/bptracker/internal/reading"
)

// DefaultTopic is the topic of the default configuration.
const DefaultTopic = "bptracker/entries"

// Event kinds.
const (
	EventCreated = "created"
	EventDeleted = "deleted"
)

// Event is a single reading change.
type Event struct {
	Kind      string
	Reading   reading.Reading
	Timestamp time.Time
}

// Publisher publishes reading events.
type Publisher interface {
	// Publish sends an event to the broker. A failure should be logged by the
	// caller, never turned into a failed request.
	Publish(event Event) error

	// Close disconnects from the broker.
	Close() error
}

// Payload is the JSON message body.
type Payload struct {
	Event     string          `json:"event"`
	Timestamp string          `json:"timestamp"`
	Reading   reading.Reading `json:"reading"`
}

// FormatPayload creates the JSON payload for an event. The reading carries
// its category.
func FormatPayload(event Event) ([]byte, error) {
	return json.Marshal(Payload{
		Event:     event.Kind,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Reading:   event.Reading,
	})
}
