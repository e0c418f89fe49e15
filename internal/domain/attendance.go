package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used on the wire and in report columns.
const DateLayout = "2006-01-02"

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	switch AttendanceStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPresent:
		return StatusPresent, nil
	case StatusAbsent:
		return StatusAbsent, nil
	}
	return "", fmt.Errorf("invalid attendance status %q", s)
}

// Label is the capitalized form used in exported sheets.
func (s AttendanceStatus) Label() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	}
	return string(s)
}

// AttendanceRecord representa a presença de um aluno em uma aula.
// Unique per (identity key, subject code, date).
type AttendanceRecord struct {
	ID          uuid.UUID        `json:"id"`
	IdentityKey IdentityKey      `json:"identity_key"`
	RollNo      string           `json:"roll_no"`
	Name        string           `json:"name"`
	SubjectCode string           `json:"subject_code"`
	SubjectName string           `json:"subject_name"`
	Date        time.Time        `json:"date"`
	Status      AttendanceStatus `json:"status"`
	MarkedAt    *time.Time       `json:"marked_at,omitempty"`
	Timing      string           `json:"timing,omitempty"`
	Semester    int              `json:"semester"`
	Branch      string           `json:"branch"`
}

func (r *AttendanceRecord) Normalize() {
	r.RollNo = strings.TrimSpace(r.RollNo)
	r.SubjectCode = strings.TrimSpace(r.SubjectCode)
	r.Branch = strings.ToUpper(strings.TrimSpace(r.Branch))
	r.Date = TruncateDay(r.Date)
}

func (r *AttendanceRecord) Present() bool {
	return r.Status == StatusPresent
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate.WithError(err)
	}
	return d, nil
}

// TruncateDay drops the clock part, keeping the calendar date in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
