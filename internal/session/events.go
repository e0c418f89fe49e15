package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const (
	EventSessionStarted   = "session.started"
	EventAttendanceMarked = "attendance.marked"
	EventSessionCompleted = "session.completed"
)

// Notifier fans session events out to live viewers of a class.
type Notifier interface {
	Broadcast(room, eventType string, data any)
}

// Observer receives loop counters, typically backed by Prometheus.
type Observer interface {
	FrameProcessed()
	FacesEncoded(n int)
	UnknownFace()
	IdentityMarked(subject string)
	EncodeFailed()
}

// Room names the live channel of a class meeting.
func Room(subject string, semester int, branch string) string {
	return fmt.Sprintf("%s:%d:%s", strings.TrimSpace(subject), semester, strings.ToUpper(branch))
}

type MarkedEvent struct {
	SessionID uuid.UUID          `json:"session_id"`
	Key       domain.IdentityKey `json:"identity_key"`
	RollNo    string             `json:"roll_no"`
	Name      string             `json:"name"`
	Distance  float64            `json:"distance"`
	MarkedAt  time.Time          `json:"marked_at"`
	Marked    int                `json:"marked"`
	Expected  int                `json:"expected"`
}

type CompletedEvent struct {
	SessionID  uuid.UUID         `json:"session_id"`
	StopReason domain.StopReason `json:"stop_reason"`
	Present    int               `json:"present"`
	Absent     int               `json:"absent"`
}

type noopNotifier struct{}

func (noopNotifier) Broadcast(string, string, any) {}

type noopObserver struct{}

func (noopObserver) FrameProcessed()       {}
func (noopObserver) FacesEncoded(int)      {}
func (noopObserver) UnknownFace()          {}
func (noopObserver) IdentityMarked(string) {}
func (noopObserver) EncodeFailed()         {}
