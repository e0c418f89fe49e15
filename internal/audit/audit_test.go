package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Log(t *testing.T) {
	tests := []struct {
		name          string
		event         Event
		wantEventType string
		wantSuccess   bool
		wantHasError  bool
	}{
		{
			name: "session completed event",
			event: Event{
				EventType:   EventSessionCompleted,
				SessionID:   uuid.NewString(),
				SubjectCode: "CS301",
				Semester:    3,
				Branch:      "CSE",
				Success:     true,
				Metadata: map[string]string{
					"present": "28",
					"absent":  "4",
				},
			},
			wantEventType: string(EventSessionCompleted),
			wantSuccess:   true,
		},
		{
			name: "student registered event",
			event: Event{
				EventType: EventStudentRegistered,
				RollNo:    "101",
				Semester:  3,
				Branch:    "CSE",
				Success:   true,
			},
			wantEventType: string(EventStudentRegistered),
			wantSuccess:   true,
		},
		{
			name: "registration undone after encoder failure",
			event: Event{
				EventType: EventRegistrationUndone,
				RollNo:    "101",
				Success:   false,
				Error:     "encoder unavailable",
			},
			wantEventType: string(EventRegistrationUndone),
			wantSuccess:   false,
			wantHasError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

			require.NoError(t, logger.Log(context.Background(), tt.event))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			assert.Equal(t, "audit_event", entry["msg"])
			assert.Equal(t, "audit", entry["component"])
			assert.Equal(t, tt.wantEventType, entry["event_type"])
			assert.Equal(t, tt.wantSuccess, entry["success"])
			assert.NotEmpty(t, entry["event_id"])

			var data Event
			require.NoError(t, json.Unmarshal([]byte(entry["event_data"].(string)), &data))
			assert.False(t, data.Timestamp.IsZero())
			assert.Equal(t, tt.wantHasError, data.Error != "")
		})
	}
}

func TestSlogLogger_KeepsProvidedIDAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	id := uuid.New()
	ts := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	require.NoError(t, logger.Log(context.Background(), Event{ID: id, Timestamp: ts, EventType: EventAttendanceEdited}))

	out := buf.String()
	assert.True(t, strings.Contains(out, id.String()))
	assert.True(t, strings.Contains(out, "2024-03-05T09:00:00Z"))
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = &NoOpLogger{}
	assert.NoError(t, l.Log(context.Background(), Event{EventType: EventSessionStarted}))
}
