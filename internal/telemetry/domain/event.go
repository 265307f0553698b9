package domain

import "time"

// Event types emitted by the server.
const (
	EventHTTPRequest    = "http_request"
	EventOrderFinalized = "order_finalized"
)

// Event is one telemetry event. Empty fields are omitted by emitters.
type Event struct {
	Type       string
	Source     string
	RequestID  string
	ActorEmail string
	Method     string
	Route      string
	Status     int
	Duration   time.Duration
	// Metadata is an optional JSON body.
	Metadata   []byte
	OccurredAt time.Time
}
