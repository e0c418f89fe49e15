package service

import (
	"context"
	"errors"

	"github.com/saturnino-fabrica-de-software/chamada/internal/audit"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
)

type SubjectRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Subject) error
	Get(ctx context.Context, code string, semester int, branch string) (*domain.Subject, error)
	List(ctx context.Context, f repository.SubjectFilter) ([]domain.Subject, error)
	DistinctCodes(ctx context.Context, semester int) ([]string, error)
}

type SubjectService struct {
	repo    SubjectRepositoryInterface
	auditor audit.Logger
}

func NewSubjectService(repo SubjectRepositoryInterface, auditor audit.Logger) *SubjectService {
	if auditor == nil {
		auditor = &audit.NoOpLogger{}
	}
	return &SubjectService{repo: repo, auditor: auditor}
}

func (s *SubjectService) Create(ctx context.Context, subject *domain.Subject) error {
	subject.Normalize()
	if err := subject.Validate(); err != nil {
		if errors.Is(err, domain.ErrInvalidSemester) {
			return err
		}
		return domain.ErrValidationFailed.WithError(err)
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		return err
	}

	_ = s.auditor.Log(ctx, audit.Event{
		EventType:   audit.EventSubjectCreated,
		SubjectCode: subject.Code,
		Semester:    subject.Semester,
		Branch:      subject.Branch,
		Success:     true,
	})
	return nil
}

// List returns subjects filtered by semester and branch. Zero values list everything.
func (s *SubjectService) List(ctx context.Context, semester int, branch string) ([]domain.Subject, error) {
	if semester != 0 && !domain.ValidSemester(semester) {
		return nil, domain.ErrInvalidSemester
	}
	return s.repo.List(ctx, repository.SubjectFilter{Semester: semester, Branch: branch})
}

func (s *SubjectService) DistinctCodes(ctx context.Context, semester int) ([]string, error) {
	if semester != 0 && !domain.ValidSemester(semester) {
		return nil, domain.ErrInvalidSemester
	}
	return s.repo.DistinctCodes(ctx, semester)
}
