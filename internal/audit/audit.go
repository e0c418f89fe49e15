package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventStudentRegistered  EventType = "STUDENT_REGISTERED"
	EventRegistrationUndone EventType = "STUDENT_REGISTRATION_UNDONE"
	EventSubjectCreated     EventType = "SUBJECT_CREATED"
	EventSemesterPromoted   EventType = "SEMESTER_PROMOTED"
	EventSessionStarted     EventType = "SESSION_STARTED"
	EventSessionCompleted   EventType = "SESSION_COMPLETED"
	EventAttendanceEdited   EventType = "ATTENDANCE_EDITED"
	EventAttendanceDeleted  EventType = "ATTENDANCE_DELETED"
)

// Event records who changed which attendance or enrolment data.
type Event struct {
	ID          uuid.UUID         `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	EventType   EventType         `json:"event_type"`
	SessionID   string            `json:"session_id,omitempty"`
	SubjectCode string            `json:"subject_code,omitempty"`
	RollNo      string            `json:"roll_no,omitempty"`
	Semester    int               `json:"semester,omitempty"`
	Branch      string            `json:"branch,omitempty"`
	Success     bool              `json:"success"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	IPAddress   string            `json:"ip_address,omitempty"`
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.EventType)),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("subject_code", event.SubjectCode),
		slog.String("roll_no", event.RollNo),
		slog.Bool("success", event.Success),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
