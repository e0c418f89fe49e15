package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// Store is the persistence the ledger needs. Upsert is keyed by
// (identity key, subject code, date).
type Store interface {
	Upsert(ctx context.Context, rec *domain.AttendanceRecord) error
	InsertMissing(ctx context.Context, recs []domain.AttendanceRecord) (int64, error)
	ExistsForSession(ctx context.Context, key domain.SessionKey) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByRoll(ctx context.Context, rollNo string) (int64, error)
	FindByRoll(ctx context.Context, rollNo, subjectCode string, date time.Time, branch string) (*domain.AttendanceRecord, error)
}

type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// MarkPresent upserts a present record for the identity. Marking the same
// identity twice for a subject and date overwrites the first write.
func (l *Ledger) MarkPresent(ctx context.Context, sess *domain.Session, id domain.Identity, at time.Time) (domain.AttendanceRecord, error) {
	markedAt := at
	rec := domain.AttendanceRecord{
		ID:          uuid.New(),
		IdentityKey: id.Key,
		RollNo:      id.Parts.RollNo,
		Name:        id.Parts.Name,
		SubjectCode: sess.SubjectCode,
		SubjectName: sess.SubjectName,
		Date:        sess.Date,
		Status:      domain.StatusPresent,
		MarkedAt:    &markedAt,
		Timing:      sess.Timing,
		Semester:    sess.Semester,
		Branch:      sess.Branch,
	}
	rec.Normalize()

	if err := l.store.Upsert(ctx, &rec); err != nil {
		return domain.AttendanceRecord{}, fmt.Errorf("upsert attendance: %w", err)
	}
	return rec, nil
}

// Save writes a manually edited record with the same upsert semantics. A
// record already stored for the roll, subject, date and branch keeps its
// identity key and semester, so edits made after a promotion overwrite the
// original row.
func (l *Ledger) Save(ctx context.Context, rec *domain.AttendanceRecord) error {
	rec.Normalize()
	existing, err := l.Find(ctx, rec.RollNo, rec.SubjectCode, rec.Date, rec.Branch)
	switch {
	case err == nil:
		rec.ID = existing.ID
		rec.IdentityKey = existing.IdentityKey
		rec.Semester = existing.Semester
	case !errors.Is(err, domain.ErrRecordNotFound):
		return err
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == domain.StatusAbsent {
		rec.MarkedAt = nil
	}
	if err := l.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("save attendance: %w", err)
	}
	return nil
}

// Find returns the stored record of a roll for a subject and date.
func (l *Ledger) Find(ctx context.Context, rollNo, subjectCode string, date time.Time, branch string) (*domain.AttendanceRecord, error) {
	rec, err := l.store.FindByRoll(ctx, rollNo, subjectCode, date, branch)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return rec, err
}

// AlreadyTaken reports whether any record exists for the class meeting.
func (l *Ledger) AlreadyTaken(ctx context.Context, key domain.SessionKey) (bool, error) {
	ok, err := l.store.ExistsForSession(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check existing attendance: %w", err)
	}
	return ok, nil
}

// PersistAbsentees stores the absent records of a reconciliation. Existing
// records are left untouched, so a present mark is never downgraded.
func (l *Ledger) PersistAbsentees(ctx context.Context, records []domain.AttendanceRecord) (int64, error) {
	absent := make([]domain.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if r.Status == domain.StatusAbsent {
			absent = append(absent, r)
		}
	}
	if len(absent) == 0 {
		return 0, nil
	}

	n, err := l.store.InsertMissing(ctx, absent)
	if err != nil {
		return 0, fmt.Errorf("insert absentees: %w", err)
	}
	return n, nil
}

func (l *Ledger) Delete(ctx context.Context, id uuid.UUID) error {
	return l.store.Delete(ctx, id)
}

func (l *Ledger) DeleteByRoll(ctx context.Context, rollNo string) (int64, error) {
	n, err := l.store.DeleteByRoll(ctx, strings.TrimSpace(rollNo))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, domain.ErrRecordNotFound
	}
	return n, nil
}
