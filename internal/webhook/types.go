package webhook

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSessionCompleted = "session.completed"
	EventSessionFailed    = "session.failed"
)

// Endpoint is a receiver configured through WEBHOOK_URLS. All endpoints
// share one signing secret.
type Endpoint struct {
	URL    string
	Secret string
}

// Job is one queued delivery of an event to an endpoint.
type Job struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	EventType   string    `json:"event_type"`
	Payload     []byte    `json:"payload"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
}

// Event is the JSON body posted to receivers.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
