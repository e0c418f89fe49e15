package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/audit"
	"github.com/saturnino-fabrica-de-software/chamada/internal/cache"
	"github.com/saturnino-fabrica-de-software/chamada/internal/config"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/report"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
	"github.com/saturnino-fabrica-de-software/chamada/internal/session"
	"github.com/saturnino-fabrica-de-software/chamada/internal/webhook"
)

var classTime = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

type attendanceFixture struct {
	subjects *MockSubjectRepository
	students *MockStudentRepository
	records  *MockAttendanceRepository
	index    *MockIndexBuilder
	runner   *MockRunner
	state    *MockStateStore
	metrics  *MockMetrics
	notifier *recordingNotifier
	webhooks *recordingPublisher
	auditor  *recordingAuditor
	svc      *AttendanceService
}

func newAttendanceFixture(cfg AttendanceConfig) *attendanceFixture {
	f := &attendanceFixture{
		subjects: &MockSubjectRepository{},
		students: &MockStudentRepository{},
		records:  &MockAttendanceRepository{},
		index:    &MockIndexBuilder{},
		runner:   &MockRunner{},
		state:    &MockStateStore{},
		metrics:  &MockMetrics{},
		notifier: &recordingNotifier{},
		webhooks: &recordingPublisher{},
		auditor:  &recordingAuditor{},
	}
	f.svc = NewAttendanceService(AttendanceDeps{
		Subjects: f.subjects,
		Students: f.students,
		Records:  f.records,
		Index:    f.index,
		Runner:   f.runner,
		State:    f.state,
		Notifier: f.notifier,
		Webhooks: f.webhooks,
		Metrics:  f.metrics,
		Auditor:  f.auditor,
	}, cfg, discardLogger())
	f.svc.now = func() time.Time { return classTime }
	return f
}

func networks() *domain.Subject {
	return &domain.Subject{ID: uuid.New(), Code: "CS301", Name: "Networks", Semester: 3, Branch: "CSE"}
}

func classRoster() []domain.Student {
	return []domain.Student{
		{RollNo: "101", Name: "Ana", Branch: "CSE", Semester: 3},
		{RollNo: "102", Name: "Bruno", Branch: "CSE", Semester: 3, Subjects: []string{"MA201"}},
		{RollNo: "103", Name: "Caio", Branch: "CSE", Semester: 3},
	}
}

func classIndex() []domain.Identity {
	var out []domain.Identity
	for _, s := range classRoster() {
		parts, _ := domain.ParseIdentityKey(s.IdentityKey().String())
		out = append(out, domain.Identity{Key: s.IdentityKey(), Parts: parts, Encoding: []float64{1}})
	}
	return out
}

func startRequest() StartRequest {
	return StartRequest{SubjectCode: "CS301", Semester: 3, Branch: "cse", Timing: "09:00-10:00"}
}

// expectPreconditions wires the lookups every start performs before the loop.
func (f *attendanceFixture) expectPreconditions() {
	f.subjects.On("Get", mock.Anything, "CS301", 3, "CSE").Return(networks(), nil)
	f.records.On("ExistsForSession", mock.Anything, mock.Anything).Return(false, nil)
	f.index.On("Build", mock.Anything, domain.Scope{Semester: 3, Branch: "CSE"}).Return(classIndex(), nil)
	f.students.On("List", mock.Anything, repository.StudentFilter{Semester: 3, Branch: "CSE"}).Return(classRoster(), nil)
}

func TestAttendanceService_Start(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{PersistAbsentees: true, LockTTL: time.Minute, StatusTTL: time.Hour})
	f.expectPreconditions()

	f.state.On("Claim", mock.Anything, "session:lock:CS301:3:CSE:2024-03-05", mock.Anything, time.Minute).Return(true, nil)
	f.state.On("Set", mock.Anything, "session:status:CS301:3:CSE:2024-03-05", mock.Anything, time.Hour).Return(nil)
	f.state.On("Delete", mock.Anything, "session:lock:CS301:3:CSE:2024-03-05").Return(nil)

	f.metrics.On("SessionStarted").Return()
	f.metrics.On("SessionFinished", domain.StopExhausted, mock.Anything, 1, 3).Return()

	f.runner.On("Run", mock.Anything, mock.Anything, classIndex()).Return(&session.Outcome{
		Marked:          map[domain.IdentityKey]time.Time{"103_3_Caio_CSE": classTime},
		FramesProcessed: 12,
		StopReason:      domain.StopExhausted,
	}, nil)

	f.records.On("InsertMissing", mock.Anything, mock.MatchedBy(func(recs []domain.AttendanceRecord) bool {
		return len(recs) == 2 && recs[0].RollNo == "101" && recs[1].RollNo == "102"
	})).Return(int64(2), nil)

	summary, err := f.svc.Start(context.Background(), startRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Present)
	assert.Equal(t, 2, summary.Absent)
	assert.Equal(t, []string{"103"}, summary.PresentRolls)
	assert.Len(t, summary.Records, 3)
	assert.Equal(t, domain.StopExhausted, summary.StopReason)
	assert.Equal(t, 12, summary.FramesProcessed)
	assert.Equal(t, "Networks", summary.Session.SubjectName)

	assert.Equal(t, []string{
		"CS301:3:CSE session.started",
		"CS301:3:CSE session.completed",
	}, f.notifier.events)
	assert.Equal(t, []audit.EventType{audit.EventSessionStarted, audit.EventSessionCompleted}, f.auditor.types())

	require.Equal(t, []string{webhook.EventSessionCompleted}, f.webhooks.events)
	event := f.webhooks.data[0].(SessionEvent)
	assert.Equal(t, SessionCompleted, event.State)
	assert.Equal(t, "09:00-10:00", event.Timing)
	assert.Equal(t, []string{"103"}, event.PresentRolls)
	assert.Equal(t, 2, event.Absent)

	f.state.AssertNumberOfCalls(t, "Set", 2)
	f.state.AssertExpectations(t)
	f.records.AssertExpectations(t)
	f.metrics.AssertExpectations(t)
}

func TestAttendanceService_StartEnrolledScope(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{AbsenceScope: config.AbsenceScopeEnrolled})
	f.svc.state = nil
	f.svc.metrics = nil
	f.expectPreconditions()

	f.runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(&session.Outcome{
		Marked:     map[domain.IdentityKey]time.Time{},
		StopReason: domain.StopCancelled,
	}, nil)

	summary, err := f.svc.Start(context.Background(), startRequest())
	require.NoError(t, err)

	assert.Len(t, summary.Records, 2, "student 102 does not take CS301")
	f.records.AssertNotCalled(t, "InsertMissing", mock.Anything, mock.Anything)
}

func TestAttendanceService_StartPreconditions(t *testing.T) {
	t.Run("invalid request", func(t *testing.T) {
		f := newAttendanceFixture(AttendanceConfig{})
		_, err := f.svc.Start(context.Background(), StartRequest{Semester: 3})
		assert.ErrorIs(t, err, domain.ErrValidationFailed)

		_, err = f.svc.Start(context.Background(), StartRequest{SubjectCode: "CS301", Branch: "CSE", Timing: "9", Semester: 0})
		assert.ErrorIs(t, err, domain.ErrInvalidSemester)
	})

	t.Run("unknown subject", func(t *testing.T) {
		f := newAttendanceFixture(AttendanceConfig{})
		f.subjects.On("Get", mock.Anything, "CS301", 3, "CSE").Return(nil, domain.ErrSubjectNotFound)

		_, err := f.svc.Start(context.Background(), startRequest())
		assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
	})

	t.Run("already taken", func(t *testing.T) {
		f := newAttendanceFixture(AttendanceConfig{})
		f.subjects.On("Get", mock.Anything, "CS301", 3, "CSE").Return(networks(), nil)
		f.records.On("ExistsForSession", mock.Anything, domain.SessionKey{
			SubjectCode: "CS301", Branch: "CSE", Semester: 3, Date: domain.TruncateDay(classTime),
		}).Return(true, nil)

		_, err := f.svc.Start(context.Background(), startRequest())
		assert.ErrorIs(t, err, domain.ErrAttendanceAlreadyTaken)
		f.runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
		f.index.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
	})

	t.Run("no identities", func(t *testing.T) {
		f := newAttendanceFixture(AttendanceConfig{})
		f.subjects.On("Get", mock.Anything, "CS301", 3, "CSE").Return(networks(), nil)
		f.records.On("ExistsForSession", mock.Anything, mock.Anything).Return(false, nil)
		f.index.On("Build", mock.Anything, mock.Anything).Return(nil, domain.ErrNoIdentitiesForScope)

		_, err := f.svc.Start(context.Background(), startRequest())
		assert.ErrorIs(t, err, domain.ErrNoIdentitiesForScope)
	})

	t.Run("empty roster", func(t *testing.T) {
		f := newAttendanceFixture(AttendanceConfig{})
		f.subjects.On("Get", mock.Anything, "CS301", 3, "CSE").Return(networks(), nil)
		f.records.On("ExistsForSession", mock.Anything, mock.Anything).Return(false, nil)
		f.index.On("Build", mock.Anything, mock.Anything).Return(classIndex(), nil)
		f.students.On("List", mock.Anything, mock.Anything).Return([]domain.Student{}, nil)

		_, err := f.svc.Start(context.Background(), startRequest())
		assert.ErrorIs(t, err, domain.ErrRosterEmpty)
		f.state.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("session running elsewhere", func(t *testing.T) {
		f := newAttendanceFixture(AttendanceConfig{})
		f.expectPreconditions()
		f.state.On("Claim", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		_, err := f.svc.Start(context.Background(), startRequest())
		assert.ErrorIs(t, err, domain.ErrAttendanceAlreadyTaken)
		f.runner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
		f.state.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestAttendanceService_StartRunFailureReleasesLock(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{PersistAbsentees: true})
	f.expectPreconditions()
	f.state.On("Claim", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.state.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.state.On("Delete", mock.Anything, "session:lock:CS301:3:CSE:2024-03-05").Return(nil)
	f.metrics.On("SessionStarted").Return()
	f.metrics.On("SessionFinished", domain.StopReason("failed"), mock.Anything, 0, 0).Return()

	f.runner.On("Run", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrCaptureUnavailable.WithError(errors.New("camera offline")))

	_, err := f.svc.Start(context.Background(), startRequest())
	assert.ErrorIs(t, err, domain.ErrCaptureUnavailable)

	f.state.AssertExpectations(t)
	f.records.AssertNotCalled(t, "InsertMissing", mock.Anything, mock.Anything)

	var st SessionStatus
	last := f.state.Calls[len(f.state.Calls)-2]
	require.Equal(t, "Set", last.Method)
	require.NoError(t, json.Unmarshal(last.Arguments.Get(2).([]byte), &st))
	assert.Equal(t, SessionFailed, st.State)
	assert.Contains(t, st.Error, "camera offline")
	assert.Equal(t, []string{webhook.EventSessionFailed}, f.webhooks.events)
}

func TestAttendanceService_StartRecoversPanic(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	f.expectPreconditions()
	f.state.On("Claim", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.state.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.state.On("Delete", mock.Anything, mock.Anything).Return(nil)
	f.metrics.On("SessionStarted").Return()

	f.runner.On("Run", mock.Anything, mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("index out of range")
	})

	summary, err := f.svc.Start(context.Background(), startRequest())
	assert.Nil(t, summary)
	assert.ErrorIs(t, err, domain.ErrInternal)
	f.state.AssertCalled(t, "Delete", mock.Anything, "session:lock:CS301:3:CSE:2024-03-05")
}

func TestAttendanceService_StartUnexpectedErrorIsInternal(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	f.subjects.On("Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("pool closed"))

	_, err := f.svc.Start(context.Background(), startRequest())
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestAttendanceService_Status(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	f.state.On("Get", mock.Anything, "session:status:CS301:3:CSE:2024-03-05").
		Return([]byte(`{"session_id":"abc","state":"completed","present":4,"absent":1}`), nil).Once()

	st, err := f.svc.Status(context.Background(), "CS301", 3, "cse", day)
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, st.State)
	assert.Equal(t, 4, st.Present)

	f.state.On("Get", mock.Anything, mock.Anything).Return(nil, cache.ErrCacheMiss)
	_, err = f.svc.Status(context.Background(), "CS301", 3, "CSE", time.Time{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttendanceService_Save(t *testing.T) {
	student := &domain.Student{ID: uuid.New(), RollNo: "101", Name: "Ana", Branch: "CSE", Semester: 3}

	tests := []struct {
		name       string
		req        SaveRequest
		setupMocks func(*attendanceFixture)
		wantErr    error
	}{
		{
			name: "upserts for an existing student",
			req:  SaveRequest{RollNo: "101", Branch: "cse", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "Present"},
			setupMocks: func(f *attendanceFixture) {
				f.students.On("GetByRoll", mock.Anything, "101", 3, "CSE").Return(student, nil)
				f.subjects.On("Get", mock.Anything, "CS301", 3, "CSE").Return(networks(), nil)
				f.records.On("FindByRoll", mock.Anything, "101", mock.Anything, mock.Anything, "CSE").Return(nil, domain.ErrRecordNotFound)
				f.records.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.AttendanceRecord) bool {
					return r.IdentityKey == "101_3_Ana_CSE" &&
						r.SubjectName == "Networks" &&
						r.Status == domain.StatusPresent &&
						r.MarkedAt != nil
				})).Return(nil)
			},
		},
		{
			name: "unknown subject keeps an empty name",
			req:  SaveRequest{RollNo: "101", Branch: "CSE", Semester: 3, SubjectCode: "XX999", Date: "2024-03-05", Status: "absent"},
			setupMocks: func(f *attendanceFixture) {
				f.students.On("GetByRoll", mock.Anything, "101", 3, "CSE").Return(student, nil)
				f.subjects.On("Get", mock.Anything, "XX999", 3, "CSE").Return(nil, domain.ErrSubjectNotFound)
				f.records.On("FindByRoll", mock.Anything, "101", mock.Anything, mock.Anything, "CSE").Return(nil, domain.ErrRecordNotFound)
				f.records.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.AttendanceRecord) bool {
					return r.SubjectName == "" && r.MarkedAt == nil
				})).Return(nil)
			},
		},
		{
			name:       "missing fields",
			req:        SaveRequest{RollNo: "101", Semester: 3},
			setupMocks: func(*attendanceFixture) {},
			wantErr:    domain.ErrValidationFailed,
		},
		{
			name:       "invalid status",
			req:        SaveRequest{RollNo: "101", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "late"},
			setupMocks: func(*attendanceFixture) {},
			wantErr:    domain.ErrValidationFailed,
		},
		{
			name: "student not found",
			req:  SaveRequest{RollNo: "999", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "present"},
			setupMocks: func(f *attendanceFixture) {
				f.students.On("GetByRoll", mock.Anything, "999", 3, "CSE").Return(nil, domain.ErrStudentNotFound)
				f.records.On("FindByRoll", mock.Anything, "999", "CS301", mock.Anything, "CSE").Return(nil, domain.ErrRecordNotFound)
			},
			wantErr: domain.ErrStudentNotFound,
		},
		{
			name: "invalid date",
			req:  SaveRequest{RollNo: "101", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "05/03/2024", Status: "present"},
			setupMocks: func(f *attendanceFixture) {
				f.students.On("GetByRoll", mock.Anything, "101", 3, "CSE").Return(student, nil)
			},
			wantErr: domain.ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttendanceFixture(AttendanceConfig{})
			tt.setupMocks(f)

			rec, err := f.svc.Save(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.records.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "101", rec.RollNo)
			assert.Equal(t, []audit.EventType{audit.EventAttendanceEdited}, f.auditor.types())
			f.records.AssertExpectations(t)
		})
	}
}

func TestAttendanceService_SaveAfterPromotion(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	march5, err := domain.ParseDate("2024-03-05")
	require.NoError(t, err)
	stored := &domain.AttendanceRecord{
		ID: uuid.New(), IdentityKey: "101_3_Ana_CSE", RollNo: "101", Name: "Ana",
		SubjectCode: "CS301", Date: march5, Status: domain.StatusAbsent, Semester: 3, Branch: "CSE",
	}
	// Ana is in semester 4 now; the March record still belongs to her semester 3 key.
	f.students.On("GetByRoll", mock.Anything, "101", 3, "CSE").Return(nil, domain.ErrStudentNotFound)
	f.records.On("FindByRoll", mock.Anything, "101", "CS301", march5, "CSE").Return(stored, nil)
	f.subjects.On("Get", mock.Anything, "CS301", 3, "CSE").Return(networks(), nil)
	f.records.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.AttendanceRecord) bool {
		return r.ID == stored.ID && r.IdentityKey == "101_3_Ana_CSE" && r.Semester == 3 && r.Status == domain.StatusPresent
	})).Return(nil).Once()

	rec, err := f.svc.Save(context.Background(), SaveRequest{
		RollNo: "101", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "present",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", rec.Name)
	f.records.AssertExpectations(t)
}

func TestAttendanceService_SaveBulk(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	f.students.On("GetByRoll", mock.Anything, "101", 3, "CSE").
		Return(&domain.Student{ID: uuid.New(), RollNo: "101", Name: "Ana", Branch: "CSE", Semester: 3}, nil)
	f.students.On("GetByRoll", mock.Anything, "102", 3, "CSE").
		Return(&domain.Student{ID: uuid.New(), RollNo: "102", Name: "Bruno Lima", Branch: "CSE", Semester: 3}, nil)
	f.records.On("FindByRoll", mock.Anything, mock.Anything, "CS301", mock.Anything, "CSE").Return(nil, domain.ErrRecordNotFound)
	f.subjects.On("Get", mock.Anything, "CS301", 3, "CSE").Return(networks(), nil).Once()
	f.records.On("Upsert", mock.Anything, mock.MatchedBy(func(r *domain.AttendanceRecord) bool {
		return r.SubjectName == "Networks" && r.Branch == "CSE"
	})).Return(nil).Twice()

	n, err := f.svc.SaveBulk(context.Background(), []BulkRecord{
		{RollNo: "101", Name: "Ana", Branch: "cse", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "present"},
		{RollNo: "102", Name: "Bruno", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "absent"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	f.subjects.AssertExpectations(t)
	f.records.AssertExpectations(t)
}

func TestAttendanceService_SaveBulkUsesRosterKey(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	ana := &domain.Student{ID: uuid.New(), RollNo: "101", Name: "Ana", Branch: "CSE", Semester: 3}
	f.students.On("GetByRoll", mock.Anything, "101", 3, "CSE").Return(ana, nil)
	f.records.On("FindByRoll", mock.Anything, "101", "CS301", mock.Anything, "CSE").Return(nil, domain.ErrRecordNotFound)
	f.subjects.On("Get", mock.Anything, "CS301", 3, "CSE").Return(networks(), nil)

	var saved []domain.IdentityKey
	f.records.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = append(saved, args.Get(1).(*domain.AttendanceRecord).IdentityKey)
	}).Return(nil)

	_, err := f.svc.SaveBulk(context.Background(), []BulkRecord{
		{RollNo: "101", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "present"},
		{RollNo: "101", Name: "ana", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "2024-03-06", Status: "absent"},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.IdentityKey{ana.IdentityKey(), ana.IdentityKey()}, saved)
}

func TestAttendanceService_SaveBulkRejectsUnknownRoll(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	f.students.On("GetByRoll", mock.Anything, "101", 3, "CSE").
		Return(&domain.Student{ID: uuid.New(), RollNo: "101", Name: "Ana", Branch: "CSE", Semester: 3}, nil)
	f.students.On("GetByRoll", mock.Anything, "999", 3, "CSE").Return(nil, domain.ErrStudentNotFound)
	f.records.On("FindByRoll", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrRecordNotFound)
	f.subjects.On("Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(networks(), nil)

	_, err := f.svc.SaveBulk(context.Background(), []BulkRecord{
		{RollNo: "101", Name: "Ana", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "present"},
		{RollNo: "999", Name: "Nobody", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "present"},
	})
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
	f.records.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAttendanceService_SaveBulkRejectsBadRowsUpFront(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	f.students.On("GetByRoll", mock.Anything, "101", 3, "CSE").
		Return(&domain.Student{ID: uuid.New(), RollNo: "101", Name: "Ana", Branch: "CSE", Semester: 3}, nil)
	f.subjects.On("Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(networks(), nil)

	_, err := f.svc.SaveBulk(context.Background(), []BulkRecord{
		{RollNo: "101", Name: "Ana", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "2024-03-05", Status: "present"},
		{RollNo: "102", Name: "Bruno", Branch: "CSE", Semester: 3, SubjectCode: "CS301", Date: "yesterday", Status: "present"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
	f.records.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)

	_, err = f.svc.SaveBulk(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
}

func TestAttendanceService_Queries(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows := []domain.AttendanceRecord{{RollNo: "101", Status: domain.StatusPresent}}

	f.records.On("List", mock.Anything, repository.AttendanceFilter{From: day, To: day, Semester: 3}).Return(rows, nil)
	f.records.On("List", mock.Anything, repository.AttendanceFilter{From: day, To: day.AddDate(0, 0, 6)}).Return(rows, nil)
	f.records.On("List", mock.Anything, repository.AttendanceFilter{}).Return(rows, nil)

	got, err := f.svc.ByDate(context.Background(), "2024-03-05", 3)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	_, err = f.svc.ByRange(context.Background(), "2024-03-05", "2024-03-11", 0)
	require.NoError(t, err)

	_, err = f.svc.All(context.Background())
	require.NoError(t, err)

	_, err = f.svc.ByRange(context.Background(), "2024-03-11", "2024-03-05", 0)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	_, err = f.svc.ByDate(context.Background(), "March 5", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestAttendanceService_Delete(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	id := uuid.New()
	f.records.On("Delete", mock.Anything, id).Return(nil)
	f.records.On("DeleteByRoll", mock.Anything, "101").Return(int64(4), nil)

	require.NoError(t, f.svc.Delete(context.Background(), id.String()))
	assert.ErrorIs(t, f.svc.Delete(context.Background(), "not-a-uuid"), domain.ErrBadRequest)

	n, err := f.svc.DeleteByRoll(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, []audit.EventType{audit.EventAttendanceDeleted, audit.EventAttendanceDeleted}, f.auditor.types())
}

func TestAttendanceService_Export(t *testing.T) {
	f := newAttendanceFixture(AttendanceConfig{})
	at := classTime

	var buf bytes.Buffer
	err := f.svc.Export(&buf, []domain.AttendanceRecord{
		{RollNo: "101", Name: "Ana", SubjectCode: "CS301", Date: classTime, Status: domain.StatusPresent, MarkedAt: &at},
	})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{report.SheetAttendance}, wb.GetSheetList())

	assert.ErrorIs(t, f.svc.Export(&bytes.Buffer{}, nil), domain.ErrValidationFailed)
}

func TestAttendanceService_SaveExport(t *testing.T) {
	dir := t.TempDir()
	f := newAttendanceFixture(AttendanceConfig{ExportDir: dir})
	sess := domain.NewSession(*networks(), "09:00-10:00", classTime)

	path, err := f.svc.SaveExport(sess, []domain.AttendanceRecord{{RollNo: "101", Status: domain.StatusAbsent, Date: classTime}})
	require.NoError(t, err)
	assert.Equal(t, dir+"/CS301_3_CSE_2024-03-05.xlsx", path)
	assert.FileExists(t, path)
}

func TestAttendanceConfigFrom(t *testing.T) {
	cfg := &config.Config{AbsenceScope: "enrolled", PersistAbsentees: true, SessionMaxDuration: 5 * time.Minute, SessionStatusTTL: time.Hour}
	got := AttendanceConfigFrom(cfg)
	assert.Equal(t, 6*time.Minute, got.LockTTL)
	assert.Equal(t, "enrolled", got.AbsenceScope)

	cfg.SessionMaxDuration = 0
	assert.Equal(t, time.Hour, AttendanceConfigFrom(cfg).LockTTL)
}
