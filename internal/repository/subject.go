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

type SubjectRepository struct {
	pool PgxPool
}

func NewSubjectRepository(pool PgxPool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

func (r *SubjectRepository) Create(ctx context.Context, s *domain.Subject) error {
	query := `
		INSERT INTO subjects (id, code, name, branch, semester, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query, s.ID, s.Code, s.Name, s.Branch, s.Semester)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSubjectExists
		}
		return fmt.Errorf("create subject: %w", err)
	}

	return nil
}

// Get finds a subject offered to a class.
func (r *SubjectRepository) Get(ctx context.Context, code string, semester int, branch string) (*domain.Subject, error) {
	query := `
		SELECT id, code, name, branch, semester
		FROM subjects
		WHERE code = $1 AND semester = $2 AND branch = $3
	`

	var s domain.Subject
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(code), semester, normBranch(branch)).
		Scan(&s.ID, &s.Code, &s.Name, &s.Branch, &s.Semester)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}

	return &s, nil
}

func (r *SubjectRepository) List(ctx context.Context, f SubjectFilter) ([]domain.Subject, error) {
	var c conditions
	if f.Semester > 0 {
		c.add("semester = $%d", f.Semester)
	}
	if b := normBranch(f.Branch); b != "" {
		c.add("branch = $%d", b)
	}

	query := `SELECT id, code, name, branch, semester FROM subjects` + c.where() + ` ORDER BY semester, branch, code`

	rows, err := r.pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []domain.Subject
	for rows.Next() {
		var s domain.Subject
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Branch, &s.Semester); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}

	return subjects, rows.Err()
}

// DistinctCodes returns the sorted subject codes offered in a semester.
func (r *SubjectRepository) DistinctCodes(ctx context.Context, semester int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT code FROM subjects WHERE semester = $1 ORDER BY code`, semester)
	if err != nil {
		return nil, fmt.Errorf("list subject codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan subject code: %w", err)
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}
