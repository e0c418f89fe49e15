package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const attendanceColumns = `id, identity_key, roll_no, name, subject_code, subject_name, date, status, marked_at, timing, semester, branch`

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Upsert writes rec, replacing the row of the same identity, subject and
// date. On conflict the stored id is kept and copied back into rec.
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance (` + attendanceColumns + `, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (identity_key, subject_code, date) DO UPDATE
		SET roll_no = EXCLUDED.roll_no,
		    name = EXCLUDED.name,
		    subject_name = EXCLUDED.subject_name,
		    status = EXCLUDED.status,
		    marked_at = EXCLUDED.marked_at,
		    timing = EXCLUDED.timing,
		    semester = EXCLUDED.semester,
		    branch = EXCLUDED.branch,
		    updated_at = NOW()
		RETURNING id
	`

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query, attendanceArgs(rec)...).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}

	return nil
}

// InsertMissing inserts the records that have no row yet for their identity,
// subject and date. Existing rows are left untouched. It returns how many
// rows were written.
func (r *AttendanceRepository) InsertMissing(ctx context.Context, recs []domain.AttendanceRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO attendance (` + attendanceColumns + `, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (identity_key, subject_code, date) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin insert attendance: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var inserted int64
	for i := range recs {
		rec := &recs[i]
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		result, err := tx.Exec(ctx, query, attendanceArgs(rec)...)
		if err != nil {
			return 0, fmt.Errorf("insert attendance for %s: %w", rec.RollNo, err)
		}
		inserted += result.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit insert attendance: %w", err)
	}

	return inserted, nil
}

// ExistsForSession reports whether any record was already taken for the class meeting.
func (r *AttendanceRepository) ExistsForSession(ctx context.Context, key domain.SessionKey) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendance
			WHERE subject_code = $1 AND date = $2 AND semester = $3 AND branch = $4
		)
	`

	var exists bool
	err := r.pool.QueryRow(ctx, query, key.SubjectCode, domain.TruncateDay(key.Date), key.Semester, normBranch(key.Branch)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check session attendance: %w", err)
	}

	return exists, nil
}

// List returns the records matching f ordered by date, subject and roll number.
func (r *AttendanceRepository) List(ctx context.Context, f AttendanceFilter) ([]domain.AttendanceRecord, error) {
	var c conditions
	if !f.From.IsZero() {
		c.add("date >= $%d", domain.TruncateDay(f.From))
	}
	if !f.To.IsZero() {
		c.add("date <= $%d", domain.TruncateDay(f.To))
	}
	if f.Semester > 0 {
		c.add("semester = $%d", f.Semester)
	}
	if b := normBranch(f.Branch); b != "" {
		c.add("branch = $%d", b)
	}
	if code := strings.TrimSpace(f.SubjectCode); code != "" {
		c.add("subject_code = $%d", code)
	}
	if roll := strings.TrimSpace(f.RollNo); roll != "" {
		c.add("roll_no = $%d", roll)
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance` + c.where() + ` ORDER BY date, subject_code, roll_no`

	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// FindByRoll returns the record of a roll number for a subject and date in a
// branch, whatever identity key it was written under.
func (r *AttendanceRepository) FindByRoll(ctx context.Context, rollNo, subjectCode string, date time.Time, branch string) (*domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance
		WHERE roll_no = $1 AND subject_code = $2 AND date = $3 AND branch = $4
		ORDER BY updated_at DESC
		LIMIT 1`

	rec, err := scanAttendance(r.pool.QueryRow(ctx, query,
		strings.TrimSpace(rollNo), strings.TrimSpace(subjectCode), domain.TruncateDay(date), normBranch(branch)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &rec, nil
}

func scanAttendance(row pgx.Row) (domain.AttendanceRecord, error) {
	var (
		rec    domain.AttendanceRecord
		key    string
		status string
	)
	err := row.Scan(
		&rec.ID,
		&key,
		&rec.RollNo,
		&rec.Name,
		&rec.SubjectCode,
		&rec.SubjectName,
		&rec.Date,
		&status,
		&rec.MarkedAt,
		&rec.Timing,
		&rec.Semester,
		&rec.Branch,
	)
	if err != nil {
		return rec, err
	}
	rec.IdentityKey = domain.IdentityKey(key)
	rec.Status = domain.AttendanceStatus(status)
	return rec, nil
}

func (r *AttendanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// DeleteByRoll removes every record of a roll number and returns the count.
func (r *AttendanceRepository) DeleteByRoll(ctx context.Context, rollNo string) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM attendance WHERE roll_no = $1`, strings.TrimSpace(rollNo))
	if err != nil {
		return 0, fmt.Errorf("delete attendance by roll: %w", err)
	}
	return result.RowsAffected(), nil
}

func attendanceArgs(rec *domain.AttendanceRecord) []any {
	return []any{
		rec.ID,
		rec.IdentityKey.String(),
		rec.RollNo,
		rec.Name,
		rec.SubjectCode,
		rec.SubjectName,
		domain.TruncateDay(rec.Date),
		string(rec.Status),
		rec.MarkedAt,
		rec.Timing,
		rec.Semester,
		rec.Branch,
	}
}
