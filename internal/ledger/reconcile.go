package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/config"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// Reconcile turns the roster and the set of marked identities into one
// record per roster student, in roster order. Students are matched by roll
// number since roll is unique inside a semester and branch.
func Reconcile(roster []domain.Student, marked map[domain.IdentityKey]time.Time, sess *domain.Session) []domain.AttendanceRecord {
	markedByRoll := make(map[string]time.Time, len(marked))
	for key, at := range marked {
		parts, err := domain.ParseIdentityKey(key.String())
		if err != nil {
			continue
		}
		markedByRoll[strings.TrimSpace(parts.RollNo)] = at
	}

	out := make([]domain.AttendanceRecord, 0, len(roster))
	seen := make(map[string]bool, len(roster))

	for _, st := range roster {
		roll := strings.TrimSpace(st.RollNo)
		if seen[roll] {
			continue
		}
		seen[roll] = true

		rec := domain.AttendanceRecord{
			ID:          uuid.New(),
			IdentityKey: st.IdentityKey(),
			RollNo:      roll,
			Name:        st.Name,
			SubjectCode: sess.SubjectCode,
			SubjectName: sess.SubjectName,
			Date:        sess.Date,
			Status:      domain.StatusAbsent,
			Timing:      sess.Timing,
			Semester:    sess.Semester,
			Branch:      sess.Branch,
		}
		if at, ok := markedByRoll[roll]; ok {
			markedAt := at
			rec.Status = domain.StatusPresent
			rec.MarkedAt = &markedAt
		}
		rec.Normalize()
		out = append(out, rec)
	}

	return out
}

// SelectRoster narrows the class roster to the students expected in the
// subject. With the roster scope everyone in the class is expected.
func SelectRoster(students []domain.Student, subjectCode, scope string) []domain.Student {
	if scope != config.AbsenceScopeEnrolled {
		return students
	}
	out := make([]domain.Student, 0, len(students))
	for _, s := range students {
		if s.EnrolledIn(subjectCode) {
			out = append(out, s)
		}
	}
	return out
}

// Counts returns how many records are present and absent.
func Counts(records []domain.AttendanceRecord) (present, absent int) {
	for _, r := range records {
		if r.Present() {
			present++
		} else {
			absent++
		}
	}
	return present, absent
}
