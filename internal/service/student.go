package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/chamada/internal/audit"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
)

type StudentRepositoryInterface interface {
	GetByRoll(ctx context.Context, rollNo string, semester int, branch string) (*domain.Student, error)
	List(ctx context.Context, f repository.StudentFilter) ([]domain.Student, error)
	Promote(ctx context.Context, semester int, branch string, exclude []string) ([]domain.Student, error)
}

type PromoteRequest struct {
	Semester int      `json:"semester"`
	Branch   string   `json:"branch"`
	Exclude  []string `json:"exclude_rolls,omitempty"`
}

type PromotionResult struct {
	From     int              `json:"from_semester"`
	To       int              `json:"to_semester"`
	Branch   string           `json:"branch"`
	Promoted []domain.Student `json:"promoted"`
}

type StudentService struct {
	repo    StudentRepositoryInterface
	auditor audit.Logger
}

func NewStudentService(repo StudentRepositoryInterface, auditor audit.Logger) *StudentService {
	if auditor == nil {
		auditor = &audit.NoOpLogger{}
	}
	return &StudentService{repo: repo, auditor: auditor}
}

func (s *StudentService) List(ctx context.Context, f repository.StudentFilter) ([]domain.Student, error) {
	if f.Semester != 0 && !domain.ValidSemester(f.Semester) {
		return nil, domain.ErrInvalidSemester
	}
	f.Branch = strings.ToUpper(strings.TrimSpace(f.Branch))
	f.Subject = strings.TrimSpace(f.Subject)
	return s.repo.List(ctx, f)
}

func (s *StudentService) Lookup(ctx context.Context, rollNo string, semester int, branch string) (*domain.Student, error) {
	rollNo = strings.TrimSpace(rollNo)
	branch = strings.ToUpper(strings.TrimSpace(branch))
	if rollNo == "" || branch == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("roll_no, branch and semester are required"))
	}
	if !domain.ValidSemester(semester) {
		return nil, domain.ErrInvalidSemester
	}
	return s.repo.GetByRoll(ctx, rollNo, semester, branch)
}

// Promote moves a class to the next semester, leaving out the excluded rolls.
func (s *StudentService) Promote(ctx context.Context, req PromoteRequest) (*PromotionResult, error) {
	branch := strings.ToUpper(strings.TrimSpace(req.Branch))
	if branch == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("branch is required"))
	}
	if !domain.ValidSemester(req.Semester) {
		return nil, domain.ErrInvalidSemester
	}
	if req.Semester >= domain.MaxSemester {
		return nil, domain.ErrSemesterFinal
	}

	exclude := make([]string, 0, len(req.Exclude))
	for _, r := range req.Exclude {
		if r = strings.TrimSpace(r); r != "" {
			exclude = append(exclude, r)
		}
	}

	promoted, err := s.repo.Promote(ctx, req.Semester, branch, exclude)
	if err != nil {
		_ = s.auditor.Log(ctx, audit.Event{
			EventType: audit.EventSemesterPromoted,
			Semester:  req.Semester,
			Branch:    branch,
			Success:   false,
			Error:     err.Error(),
		})
		return nil, fmt.Errorf("promote semester %d %s: %w", req.Semester, branch, err)
	}

	_ = s.auditor.Log(ctx, audit.Event{
		EventType: audit.EventSemesterPromoted,
		Semester:  req.Semester,
		Branch:    branch,
		Success:   true,
		Metadata: map[string]string{
			"promoted": fmt.Sprint(len(promoted)),
			"excluded": strings.Join(exclude, ","),
		},
	})

	return &PromotionResult{
		From:     req.Semester,
		To:       req.Semester + 1,
		Branch:   branch,
		Promoted: promoted,
	}, nil
}
