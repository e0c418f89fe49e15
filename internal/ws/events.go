package ws

import "time"

// Event is the message pushed to every client of a room.
type Event struct {
	Room      string    `json:"room"`
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
