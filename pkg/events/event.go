package events

import "time"

// Event is the contract every bus event implements.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_SAVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}
