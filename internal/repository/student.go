package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const studentColumns = `id, roll_no, name, branch, semester, subjects, face_image_path, created_at, updated_at`

type StudentRepository struct {
	pool PgxPool
}

func NewStudentRepository(pool PgxPool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func (r *StudentRepository) Create(ctx context.Context, s *domain.Student) error {
	query := `
		INSERT INTO students (id, roll_no, name, branch, semester, subjects, face_image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		s.ID,
		s.RollNo,
		s.Name,
		s.Branch,
		s.Semester,
		s.Subjects,
		s.FaceImagePath,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrStudentExists
		}
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	s, err := scanStudent(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return s, nil
}

// GetByRoll looks a student up inside a class.
func (r *StudentRepository) GetByRoll(ctx context.Context, rollNo string, semester int, branch string) (*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE roll_no = $1 AND semester = $2 AND branch = $3`

	s, err := scanStudent(r.pool.QueryRow(ctx, query, strings.TrimSpace(rollNo), semester, normBranch(branch)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student by roll: %w", err)
	}
	return s, nil
}

// List returns the students matching f ordered by roll number.
func (r *StudentRepository) List(ctx context.Context, f StudentFilter) ([]domain.Student, error) {
	var c conditions
	if f.Semester > 0 {
		c.add("semester = $%d", f.Semester)
	}
	if b := normBranch(f.Branch); b != "" {
		c.add("branch = $%d", b)
	}
	if code := strings.TrimSpace(f.Subject); code != "" {
		c.add("(subjects IS NULL OR cardinality(subjects) = 0 OR $%d = ANY(subjects))", code)
	}

	query := `SELECT ` + studentColumns + ` FROM students` + c.where() + ` ORDER BY roll_no, semester, branch`

	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *s)
	}

	return students, rows.Err()
}

func (r *StudentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}

	return nil
}

// Promote moves every student of a class to the next semester, except the
// excluded roll numbers, and re-keys their stored faces in the same
// transaction. It returns the promoted students.
func (r *StudentRepository) Promote(ctx context.Context, semester int, branch string, exclude []string) ([]domain.Student, error) {
	if exclude == nil {
		exclude = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin promote: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `SELECT ` + studentColumns + ` FROM students
		WHERE semester = $1 AND branch = $2 AND NOT (roll_no = ANY($3))
		ORDER BY roll_no
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, semester, normBranch(branch), exclude)
	if err != nil {
		return nil, fmt.Errorf("select students to promote: %w", err)
	}

	var students []domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, *s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select students to promote: %w", err)
	}

	for i := range students {
		s := &students[i]
		s.Semester = semester + 1

		if _, err := tx.Exec(ctx, `UPDATE students SET semester = $1, updated_at = NOW() WHERE id = $2`, s.Semester, s.ID); err != nil {
			if isUniqueViolation(err) {
				return nil, domain.ErrStudentExists.WithMessage(fmt.Sprintf("Student %s already exists in semester %d", s.RollNo, s.Semester))
			}
			return nil, fmt.Errorf("promote student %s: %w", s.RollNo, err)
		}

		if _, err := tx.Exec(ctx, `UPDATE faces SET identity_key = $1 WHERE student_id = $2`, s.IdentityKey().String(), s.ID); err != nil {
			return nil, fmt.Errorf("re-key face of %s: %w", s.RollNo, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit promote: %w", err)
	}

	return students, nil
}

func scanStudent(row pgx.Row) (*domain.Student, error) {
	var s domain.Student
	err := row.Scan(
		&s.ID,
		&s.RollNo,
		&s.Name,
		&s.Branch,
		&s.Semester,
		&s.Subjects,
		&s.FaceImagePath,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func normBranch(b string) string {
	return strings.ToUpper(strings.TrimSpace(b))
}
