package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionKey identifies a class meeting. At most one session runs per key.
type SessionKey struct {
	SubjectCode string
	Branch      string
	Semester    int
	Date        time.Time
}

// Session holds the state of one attendance run. It is created when the
// session starts and discarded after reconciliation.
type Session struct {
	ID          uuid.UUID `json:"id"`
	SubjectCode string    `json:"subject_code"`
	SubjectName string    `json:"subject_name"`
	Semester    int       `json:"semester"`
	Branch      string    `json:"branch"`
	Timing      string    `json:"timing"`
	Date        time.Time `json:"date"`
	StartedAt   time.Time `json:"started_at"`

	// Roster and Marked are filled by the capture loop. Marked is a cache of
	// what the ledger already holds for this run.
	Roster []IdentityKey             `json:"-"`
	Marked map[IdentityKey]time.Time `json:"-"`
}

func NewSession(subject Subject, timing string, now time.Time) *Session {
	return &Session{
		ID:          uuid.New(),
		SubjectCode: subject.Code,
		SubjectName: subject.Name,
		Semester:    subject.Semester,
		Branch:      strings.ToUpper(subject.Branch),
		Timing:      timing,
		Date:        TruncateDay(now),
		StartedAt:   now,
	}
}

func (s *Session) Key() SessionKey {
	return SessionKey{
		SubjectCode: s.SubjectCode,
		Branch:      s.Branch,
		Semester:    s.Semester,
		Date:        s.Date,
	}
}

// IsMarked reports whether key was already marked in this run.
func (s *Session) IsMarked(key IdentityKey) bool {
	_, ok := s.Marked[key]
	return ok
}

func (s *Session) Scope() Scope {
	return Scope{Semester: s.Semester, Branch: s.Branch}
}

// StopReason tells why the capture loop ended.
type StopReason string

const (
	StopComplete  StopReason = "complete"
	StopExhausted StopReason = "exhausted"
	StopCancelled StopReason = "cancelled"
	StopTimeout   StopReason = "timeout"
)
