package domain

import (
	"time"

	"github.com/google/uuid"
)

// Face is the stored encoding of a registered student. One face per student;
// the first face found in the registration image wins.
type Face struct {
	ID          uuid.UUID   `json:"id"`
	StudentID   uuid.UUID   `json:"student_id"`
	IdentityKey IdentityKey `json:"identity_key"`
	Encoding    []float64   `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
}
