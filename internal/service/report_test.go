package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/report"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
)

func TestReportService_GenerateDaily(t *testing.T) {
	students := &MockStudentRepository{}
	records := &MockAttendanceRepository{}
	subjects := &MockSubjectRepository{}

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	subjects.On("DistinctCodes", mock.Anything, 3).Return([]string{"CS301"}, nil)
	students.On("List", mock.Anything, repository.StudentFilter{Semester: 3, Branch: "CSE"}).Return(classRoster(), nil)
	records.On("List", mock.Anything, repository.AttendanceFilter{From: start, To: end, Semester: 3, Branch: "CSE"}).
		Return([]domain.AttendanceRecord{
			{RollNo: "101", SubjectCode: "CS301", Date: start, Status: domain.StatusPresent},
		}, nil)

	svc := NewReportService(students, records, subjects)
	req := ReportRequest{ReportType: "daily", Semester: 3, Branch: "cse", StartDate: "2024-03-04", EndDate: "2024-03-06"}

	rep, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, rep.Sheets, 1)
	assert.Equal(t, report.ModeDaily, rep.Mode)

	grid := rep.Sheets[0]
	assert.Len(t, grid.Header, 6)
	assert.Equal(t, []any{"101", "Ana", "CSE", "Present", "Absent", "Absent"}, grid.Rows[0])

	var buf bytes.Buffer
	require.NoError(t, svc.Write(&buf, rep))
	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{report.SheetDaily}, wb.GetSheetList())

	assert.Equal(t, "daily_report_sem3_2024-03-04_to_2024-03-06.xlsx", ReportFileName(rep, req))
}

func TestReportService_GenerateSubject(t *testing.T) {
	students := &MockStudentRepository{}
	records := &MockAttendanceRepository{}
	subjects := &MockSubjectRepository{}

	students.On("List", mock.Anything, mock.Anything).Return(classRoster(), nil)
	records.On("List", mock.Anything, mock.MatchedBy(func(f repository.AttendanceFilter) bool {
		return f.SubjectCode == "CS301"
	})).Return([]domain.AttendanceRecord{}, nil)

	req := ReportRequest{ReportType: "weekly", Subject: "CS301", Semester: 3, StartDate: "2024-03-04", EndDate: "2024-03-10"}
	rep, err := NewReportService(students, records, subjects).Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, report.ModeSubject, rep.Mode)
	subjects.AssertNotCalled(t, "DistinctCodes", mock.Anything, mock.Anything)
	assert.Equal(t, "CS301_subject_report_sem3_2024-03-04_to_2024-03-10.xlsx", ReportFileName(rep, req))
}

func TestReportService_GenerateErrors(t *testing.T) {
	subjects := &MockSubjectRepository{}
	subjects.On("DistinctCodes", mock.Anything, 2).Return([]string{}, nil)
	subjects.On("DistinctCodes", mock.Anything, 3).Return([]string{"CS301"}, nil)

	students := &MockStudentRepository{}
	students.On("List", mock.Anything, mock.Anything).Return([]domain.Student{}, nil)

	svc := NewReportService(students, &MockAttendanceRepository{}, subjects)

	tests := []struct {
		name    string
		req     ReportRequest
		wantErr error
	}{
		{"bad semester", ReportRequest{Semester: 0, StartDate: "2024-03-01", EndDate: "2024-03-02"}, domain.ErrInvalidSemester},
		{"bad start", ReportRequest{Semester: 3, StartDate: "01/03/2024", EndDate: "2024-03-02"}, domain.ErrInvalidDate},
		{"reversed range", ReportRequest{Semester: 3, StartDate: "2024-03-05", EndDate: "2024-03-01"}, domain.ErrValidationFailed},
		{"subject range over a year", ReportRequest{Subject: "CS301", Semester: 3, StartDate: "2020-01-01", EndDate: "2024-12-31"}, report.ErrRangeTooLong},
		{"summary range over a year", ReportRequest{ReportType: "monthly", Semester: 3, StartDate: "2020-01-01", EndDate: "2024-12-31"}, report.ErrRangeTooLong},
		{"no subjects", ReportRequest{Semester: 2, StartDate: "2024-03-01", EndDate: "2024-03-02"}, domain.ErrSubjectNotFound},
		{"no students", ReportRequest{Semester: 3, StartDate: "2024-03-01", EndDate: "2024-03-02"}, domain.ErrRosterEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReportService_GenerateRangeCapAppliesToEveryMode(t *testing.T) {
	records := &MockAttendanceRepository{}
	svc := NewReportService(&MockStudentRepository{}, records, &MockSubjectRepository{})

	for _, reportType := range []string{"daily", "subject", "weekly", "monthly"} {
		t.Run(reportType, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), ReportRequest{
				ReportType: reportType, Subject: "CS301", Semester: 3,
				StartDate: "2023-01-01", EndDate: "2024-06-30",
			})
			assert.ErrorIs(t, err, domain.ErrValidationFailed)
			assert.ErrorIs(t, err, report.ErrRangeTooLong)
		})
	}
	records.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
