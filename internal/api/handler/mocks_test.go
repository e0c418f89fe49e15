package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/chamada/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/chamada/internal/capture"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/report"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
)

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(testLogger())})
}

func jsonRequest(method, target, body string) *http.Request {
	req, _ := http.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Register(ctx context.Context, req service.RegisterRequest) (*domain.Student, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) List(ctx context.Context, f repository.StudentFilter) ([]domain.Student, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}

func (m *MockStudentService) Lookup(ctx context.Context, rollNo string, semester int, branch string) (*domain.Student, error) {
	args := m.Called(ctx, rollNo, semester, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentService) Promote(ctx context.Context, req service.PromoteRequest) (*service.PromotionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PromotionResult), args.Error(1)
}

type MockSubjectService struct {
	mock.Mock
}

func (m *MockSubjectService) Create(ctx context.Context, subject *domain.Subject) error {
	return m.Called(ctx, subject).Error(0)
}

func (m *MockSubjectService) List(ctx context.Context, semester int, branch string) ([]domain.Subject, error) {
	args := m.Called(ctx, semester, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subject), args.Error(1)
}

func (m *MockSubjectService) DistinctCodes(ctx context.Context, semester int) ([]string, error) {
	args := m.Called(ctx, semester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Start(ctx context.Context, req service.StartRequest) (*service.SessionSummary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionSummary), args.Error(1)
}

func (m *MockSessionService) Status(ctx context.Context, subjectCode string, semester int, branch string, date time.Time) (*service.SessionStatus, error) {
	args := m.Called(ctx, subjectCode, semester, branch, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionStatus), args.Error(1)
}

func (m *MockSessionService) Export(w io.Writer, records []domain.AttendanceRecord) error {
	args := m.Called(w, records)
	if args.Error(0) == nil {
		_, _ = w.Write([]byte("PK"))
	}
	return args.Error(0)
}

type MockAttendanceService struct {
	mock.Mock
}

func (m *MockAttendanceService) Save(ctx context.Context, req service.SaveRequest) (*domain.AttendanceRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceRecord), args.Error(1)
}

func (m *MockAttendanceService) SaveBulk(ctx context.Context, rows []service.BulkRecord) (int, error) {
	args := m.Called(ctx, rows)
	return args.Int(0), args.Error(1)
}

func (m *MockAttendanceService) ByDate(ctx context.Context, date string, semester int) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, date, semester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

func (m *MockAttendanceService) ByRange(ctx context.Context, start, end string, semester int) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, start, end, semester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

func (m *MockAttendanceService) All(ctx context.Context) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

func (m *MockAttendanceService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAttendanceService) DeleteByRoll(ctx context.Context, rollNo string) (int64, error) {
	args := m.Called(ctx, rollNo)
	return args.Get(0).(int64), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Generate(ctx context.Context, req service.ReportRequest) (*report.Report, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *MockReportService) Write(w io.Writer, rep *report.Report) error {
	args := m.Called(w, rep)
	if args.Error(0) == nil {
		_, _ = w.Write([]byte("PK"))
	}
	return args.Error(0)
}

// stubDevice yields frames from memory.
type stubDevice struct {
	openErr error
	frames  [][]byte
}

func (d *stubDevice) Open(context.Context) (capture.Source, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return &stubSource{frames: d.frames}, nil
}

type stubSource struct {
	frames [][]byte
	closed bool
}

func (s *stubSource) Next(context.Context) (capture.Frame, error) {
	if len(s.frames) == 0 {
		return capture.Frame{}, io.EOF
	}
	f := capture.Frame{Seq: 1, Data: s.frames[0]}
	s.frames = s.frames[1:]
	return f, nil
}

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}
