package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/report"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
)

type RosterListerInterface interface {
	List(ctx context.Context, f repository.StudentFilter) ([]domain.Student, error)
}

type RecordListerInterface interface {
	List(ctx context.Context, f repository.AttendanceFilter) ([]domain.AttendanceRecord, error)
}

type SubjectCodesInterface interface {
	DistinctCodes(ctx context.Context, semester int) ([]string, error)
}

type ReportRequest struct {
	ReportType string `json:"report_type"`
	Subject    string `json:"subject,omitempty"`
	Semester   int    `json:"semester"`
	Branch     string `json:"branch,omitempty"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type ReportService struct {
	students RosterListerInterface
	records  RecordListerInterface
	subjects SubjectCodesInterface
}

func NewReportService(students RosterListerInterface, records RecordListerInterface, subjects SubjectCodesInterface) *ReportService {
	return &ReportService{students: students, records: records, subjects: subjects}
}

// Generate loads the roster and the records of the range and aggregates them
// in the layout the request asks for.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*report.Report, error) {
	if !domain.ValidSemester(req.Semester) {
		return nil, domain.ErrInvalidSemester
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := report.CheckRange(start, end); err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	branch := strings.ToUpper(strings.TrimSpace(req.Branch))
	subject := strings.TrimSpace(req.Subject)

	var subjects []string
	if subject == "" {
		subjects, err = s.subjects.DistinctCodes(ctx, req.Semester)
		if err != nil {
			return nil, fmt.Errorf("list subject codes: %w", err)
		}
		if len(subjects) == 0 {
			return nil, domain.ErrSubjectNotFound.WithMessage("No subjects registered for this semester")
		}
	}

	roster, err := s.students.List(ctx, repository.StudentFilter{Semester: req.Semester, Branch: branch})
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, domain.ErrRosterEmpty
	}

	records, err := s.records.List(ctx, repository.AttendanceFilter{
		From:        start,
		To:          end,
		Semester:    req.Semester,
		Branch:      branch,
		SubjectCode: subject,
	})
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}

	rep, err := report.Build(report.Input{
		ReportType: req.ReportType,
		Subject:    subject,
		Subjects:   subjects,
		Start:      start,
		End:        end,
		Roster:     roster,
		Records:    records,
	})
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, domain.ErrValidationFailed.WithError(err)
	}
	return rep, nil
}

func (s *ReportService) Write(w io.Writer, rep *report.Report) error {
	return report.WriteWorkbook(w, rep.Sheets...)
}

// ReportFileName names a workbook after its layout, semester and range.
func ReportFileName(rep *report.Report, req ReportRequest) string {
	name := fmt.Sprintf("%s_report_sem%d_%s_to_%s", rep.Mode, req.Semester, strings.TrimSpace(req.StartDate), strings.TrimSpace(req.EndDate))
	if s := strings.TrimSpace(req.Subject); s != "" {
		name = s + "_" + name
	}
	return name + ".xlsx"
}
