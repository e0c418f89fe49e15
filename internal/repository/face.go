package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

type FaceRepository struct {
	pool PgxPool
}

func NewFaceRepository(pool PgxPool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

func (r *FaceRepository) Create(ctx context.Context, face *domain.Face) error {
	query := `
		INSERT INTO faces (id, student_id, identity_key, encoding, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	if face.ID == uuid.Nil {
		face.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		face.ID,
		face.StudentID,
		face.IdentityKey.String(),
		pgvector.NewVector(toVector(face.Encoding)),
	).Scan(&face.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrStudentExists
		}
		return fmt.Errorf("create face: %w", err)
	}

	return nil
}

// ListFaces returns every stored face ordered by identity key.
func (r *FaceRepository) ListFaces(ctx context.Context) ([]domain.Face, error) {
	query := `
		SELECT id, student_id, identity_key, encoding, created_at
		FROM faces
		ORDER BY identity_key
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list faces: %w", err)
	}
	defer rows.Close()

	var faces []domain.Face
	for rows.Next() {
		var (
			face      domain.Face
			key       string
			embedding *pgvector.Vector
		)
		if err := rows.Scan(&face.ID, &face.StudentID, &key, &embedding, &face.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		face.IdentityKey = domain.IdentityKey(key)
		if embedding != nil && embedding.Slice() != nil {
			face.Encoding = fromVector(embedding.Slice())
		}
		faces = append(faces, face)
	}

	return faces, rows.Err()
}

func (r *FaceRepository) DeleteByStudent(ctx context.Context, studentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM faces WHERE student_id = $1`, studentID)
	if err != nil {
		return fmt.Errorf("delete face: %w", err)
	}
	return nil
}
