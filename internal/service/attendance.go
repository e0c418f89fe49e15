package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/chamada/internal/audit"
	"github.com/saturnino-fabrica-de-software/chamada/internal/cache"
	"github.com/saturnino-fabrica-de-software/chamada/internal/config"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ledger"
	"github.com/saturnino-fabrica-de-software/chamada/internal/report"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
	"github.com/saturnino-fabrica-de-software/chamada/internal/session"
	"github.com/saturnino-fabrica-de-software/chamada/internal/webhook"
)

type AttendanceRepositoryInterface interface {
	ledger.Store
	List(ctx context.Context, f repository.AttendanceFilter) ([]domain.AttendanceRecord, error)
}

type IndexBuilderInterface interface {
	Build(ctx context.Context, scope domain.Scope) ([]domain.Identity, error)
}

type SessionRunnerInterface interface {
	Run(ctx context.Context, sess *domain.Session, index []domain.Identity) (*session.Outcome, error)
}

// SessionStateStore keeps the running lock and the last outcome of each
// class meeting, shared by every API instance.
type SessionStateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Claim(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// EventPublisher forwards finished sessions to external systems.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

type SessionMetrics interface {
	SessionStarted()
	SessionFinished(reason domain.StopReason, elapsed time.Duration, present, rosterSize int)
}

type AttendanceConfig struct {
	AbsenceScope     string
	PersistAbsentees bool
	// LockTTL bounds how long a crashed instance can block a class.
	LockTTL   time.Duration
	StatusTTL time.Duration
	// ExportDir receives a workbook per finished session. Empty disables it.
	ExportDir string
}

func AttendanceConfigFrom(cfg *config.Config) AttendanceConfig {
	lockTTL := time.Hour
	if cfg.SessionMaxDuration > 0 {
		lockTTL = cfg.SessionMaxDuration + time.Minute
	}
	return AttendanceConfig{
		AbsenceScope:     cfg.AbsenceScope,
		PersistAbsentees: cfg.PersistAbsentees,
		LockTTL:          lockTTL,
		StatusTTL:        cfg.SessionStatusTTL,
		ExportDir:        cfg.ExportDir,
	}
}

type StartRequest struct {
	SubjectCode string `json:"subject_code"`
	Semester    int    `json:"semester"`
	Branch      string `json:"branch"`
	Timing      string `json:"timing"`
}

type SessionSummary struct {
	Session         *domain.Session           `json:"session"`
	Records         []domain.AttendanceRecord `json:"records"`
	PresentRolls    []string                  `json:"present_rolls"`
	Present         int                       `json:"present"`
	Absent          int                       `json:"absent"`
	StopReason      domain.StopReason         `json:"stop_reason"`
	FramesProcessed int                       `json:"frames_processed"`
	UnknownFaces    int                       `json:"unknown_faces"`
	ExportPath      string                    `json:"export_path,omitempty"`
}

const (
	SessionRunning   = "running"
	SessionCompleted = "completed"
	SessionFailed    = "failed"
)

// SessionStatus is the last known state of a class meeting.
type SessionStatus struct {
	SessionID   string            `json:"session_id"`
	SubjectCode string            `json:"subject_code"`
	Semester    int               `json:"semester"`
	Branch      string            `json:"branch"`
	Date        string            `json:"date"`
	State       string            `json:"state"`
	StopReason  domain.StopReason `json:"stop_reason,omitempty"`
	Present     int               `json:"present"`
	Absent      int               `json:"absent"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  *time.Time        `json:"finished_at,omitempty"`
	Error       string            `json:"error,omitempty"`
}

type AttendanceService struct {
	subjects SubjectRepositoryInterface
	students StudentRepositoryInterface
	records  AttendanceRepositoryInterface
	ledger   *ledger.Ledger
	index    IndexBuilderInterface
	runner   SessionRunnerInterface
	state    SessionStateStore
	notifier session.Notifier
	webhooks EventPublisher
	metrics  SessionMetrics
	auditor  audit.Logger
	logger   *slog.Logger
	cfg      AttendanceConfig
	now      func() time.Time
}

// AttendanceDeps groups the collaborators of the service. Ledger should be
// the same ledger the runner marks through; it defaults to one over Records.
type AttendanceDeps struct {
	Ledger   *ledger.Ledger
	Subjects SubjectRepositoryInterface
	Students StudentRepositoryInterface
	Records  AttendanceRepositoryInterface
	Index    IndexBuilderInterface
	Runner   SessionRunnerInterface
	State    SessionStateStore
	Notifier session.Notifier
	Webhooks EventPublisher
	Metrics  SessionMetrics
	Auditor  audit.Logger
}

func NewAttendanceService(deps AttendanceDeps, cfg AttendanceConfig, logger *slog.Logger) *AttendanceService {
	s := &AttendanceService{
		subjects: deps.Subjects,
		students: deps.Students,
		records:  deps.Records,
		ledger:   deps.Ledger,
		index:    deps.Index,
		runner:   deps.Runner,
		state:    deps.State,
		notifier: deps.Notifier,
		webhooks: deps.Webhooks,
		metrics:  deps.Metrics,
		auditor:  deps.Auditor,
		logger:   logger.With("component", "attendance_service"),
		cfg:      cfg,
		now:      time.Now,
	}
	if s.ledger == nil {
		s.ledger = ledger.New(deps.Records)
	}
	if s.auditor == nil {
		s.auditor = &audit.NoOpLogger{}
	}
	if s.cfg.AbsenceScope == "" {
		s.cfg.AbsenceScope = config.AbsenceScopeRoster
	}
	return s
}

func lockKey(k domain.SessionKey) string {
	return "session:lock:" + sessionKeyString(k)
}

func statusKey(k domain.SessionKey) string {
	return "session:status:" + sessionKeyString(k)
}

func sessionKeyString(k domain.SessionKey) string {
	return fmt.Sprintf("%s:%d:%s:%s", k.SubjectCode, k.Semester, k.Branch, k.Date.Format(domain.DateLayout))
}

func (r StartRequest) validate() error {
	var missing []string
	if strings.TrimSpace(r.SubjectCode) == "" {
		missing = append(missing, "subject_code")
	}
	if strings.TrimSpace(r.Branch) == "" {
		missing = append(missing, "branch")
	}
	if strings.TrimSpace(r.Timing) == "" {
		missing = append(missing, "timing")
	}
	if len(missing) > 0 {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("missing fields: %s", strings.Join(missing, ", ")))
	}
	if !domain.ValidSemester(r.Semester) {
		return domain.ErrInvalidSemester
	}
	return nil
}

// Start runs one attendance session to completion: it checks the class can
// be taken, drives the capture loop and reconciles the roster. Panics and
// unexpected errors come back as domain.ErrInternal.
func (s *AttendanceService) Start(ctx context.Context, req StartRequest) (summary *SessionSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("attendance session panicked", "panic", r, "subject", req.SubjectCode)
			summary, err = nil, domain.ErrInternal.WithError(fmt.Errorf("panic: %v", r))
		}
	}()

	summary, err = s.start(ctx, req)
	if err != nil {
		var appErr *domain.AppError
		if !errors.As(err, &appErr) && !errors.Is(err, context.Canceled) {
			s.logger.Error("attendance session failed", "error", err, "subject", req.SubjectCode)
			return nil, domain.ErrInternal.WithError(err)
		}
		return nil, err
	}
	return summary, nil
}

func (s *AttendanceService) start(ctx context.Context, req StartRequest) (*SessionSummary, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	subject, err := s.subjects.Get(ctx, strings.TrimSpace(req.SubjectCode), req.Semester, strings.ToUpper(strings.TrimSpace(req.Branch)))
	if err != nil {
		return nil, err
	}

	sess := domain.NewSession(*subject, strings.TrimSpace(req.Timing), s.now())
	key := sess.Key()
	log := s.logger.With("session_id", sess.ID, "subject", sess.SubjectCode, "semester", sess.Semester, "branch", sess.Branch)

	taken, err := s.ledger.AlreadyTaken(ctx, key)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrAttendanceAlreadyTaken
	}

	index, err := s.index.Build(ctx, sess.Scope())
	if err != nil {
		return nil, err
	}

	classList, err := s.students.List(ctx, repository.StudentFilter{Semester: sess.Semester, Branch: sess.Branch})
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	roster := ledger.SelectRoster(classList, sess.SubjectCode, s.cfg.AbsenceScope)
	if len(roster) == 0 {
		return nil, domain.ErrRosterEmpty
	}

	if err := s.claim(ctx, sess); err != nil {
		return nil, err
	}
	defer s.release(ctx, key)

	s.recordStarted(ctx, sess, len(index), len(roster))

	outcome, err := s.runner.Run(ctx, sess, index)
	if err != nil {
		s.recordFailed(ctx, sess, err)
		return nil, err
	}

	records := ledger.Reconcile(roster, outcome.Marked, sess)
	present, absent := ledger.Counts(records)

	if s.cfg.PersistAbsentees {
		n, err := s.ledger.PersistAbsentees(context.WithoutCancel(ctx), records)
		if err != nil {
			s.recordFailed(ctx, sess, err)
			return nil, err
		}
		log.Info("absentees stored", "inserted", n, "absent", absent)
	}

	summary := &SessionSummary{
		Session:         sess,
		Records:         records,
		PresentRolls:    presentRolls(records),
		Present:         present,
		Absent:          absent,
		StopReason:      outcome.StopReason,
		FramesProcessed: outcome.FramesProcessed,
		UnknownFaces:    outcome.UnknownFaces,
	}

	if s.cfg.ExportDir != "" {
		path, err := s.SaveExport(sess, records)
		if err != nil {
			log.Warn("failed to write session workbook", "error", err)
		} else {
			summary.ExportPath = path
		}
	}

	s.recordCompleted(ctx, sess, summary, len(roster))
	return summary, nil
}

func (s *AttendanceService) claim(ctx context.Context, sess *domain.Session) error {
	if s.state == nil {
		return nil
	}
	payload, _ := json.Marshal(SessionStatus{SessionID: sess.ID.String(), State: SessionRunning, StartedAt: sess.StartedAt})
	ok, err := s.state.Claim(ctx, lockKey(sess.Key()), payload, s.cfg.LockTTL)
	if err != nil {
		return fmt.Errorf("claim session: %w", err)
	}
	if !ok {
		return domain.ErrAttendanceAlreadyTaken.WithMessage("An attendance session is already running for this class")
	}
	return nil
}

func (s *AttendanceService) release(ctx context.Context, key domain.SessionKey) {
	if s.state == nil {
		return
	}
	if err := s.state.Delete(context.WithoutCancel(ctx), lockKey(key)); err != nil {
		s.logger.Warn("failed to release session lock", "key", sessionKeyString(key), "error", err)
	}
}

func (s *AttendanceService) storeStatus(ctx context.Context, key domain.SessionKey, st SessionStatus) {
	if s.state == nil {
		return
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := s.state.Set(context.WithoutCancel(ctx), statusKey(key), payload, s.cfg.StatusTTL); err != nil {
		s.logger.Warn("failed to store session status", "session_id", st.SessionID, "error", err)
	}
}

func statusOf(sess *domain.Session, state string) SessionStatus {
	return SessionStatus{
		SessionID:   sess.ID.String(),
		SubjectCode: sess.SubjectCode,
		Semester:    sess.Semester,
		Branch:      sess.Branch,
		Date:        sess.Date.Format(domain.DateLayout),
		State:       state,
		StartedAt:   sess.StartedAt,
	}
}

func (s *AttendanceService) recordStarted(ctx context.Context, sess *domain.Session, identities, rosterSize int) {
	if s.metrics != nil {
		s.metrics.SessionStarted()
	}
	if s.notifier != nil {
		s.notifier.Broadcast(session.Room(sess.SubjectCode, sess.Semester, sess.Branch), session.EventSessionStarted, sess)
	}
	s.storeStatus(ctx, sess.Key(), statusOf(sess, SessionRunning))
	_ = s.auditor.Log(ctx, audit.Event{
		EventType:   audit.EventSessionStarted,
		SessionID:   sess.ID.String(),
		SubjectCode: sess.SubjectCode,
		Semester:    sess.Semester,
		Branch:      sess.Branch,
		Success:     true,
		Metadata: map[string]string{
			"identities": fmt.Sprint(identities),
			"roster":     fmt.Sprint(rosterSize),
			"timing":     sess.Timing,
		},
	})
}

func (s *AttendanceService) recordFailed(ctx context.Context, sess *domain.Session, cause error) {
	finished := s.now()
	if s.metrics != nil {
		s.metrics.SessionFinished("failed", finished.Sub(sess.StartedAt), 0, 0)
	}
	st := statusOf(sess, SessionFailed)
	st.FinishedAt = &finished
	st.Error = cause.Error()
	s.storeStatus(ctx, sess.Key(), st)
	s.publish(ctx, webhook.EventSessionFailed, SessionEvent{SessionStatus: st, Timing: sess.Timing})
	_ = s.auditor.Log(context.WithoutCancel(ctx), audit.Event{
		EventType:   audit.EventSessionCompleted,
		SessionID:   sess.ID.String(),
		SubjectCode: sess.SubjectCode,
		Semester:    sess.Semester,
		Branch:      sess.Branch,
		Success:     false,
		Error:       cause.Error(),
	})
}

func (s *AttendanceService) recordCompleted(ctx context.Context, sess *domain.Session, summary *SessionSummary, rosterSize int) {
	finished := s.now()
	if s.metrics != nil {
		s.metrics.SessionFinished(summary.StopReason, finished.Sub(sess.StartedAt), summary.Present, rosterSize)
	}
	if s.notifier != nil {
		s.notifier.Broadcast(session.Room(sess.SubjectCode, sess.Semester, sess.Branch), session.EventSessionCompleted, session.CompletedEvent{
			SessionID:  sess.ID,
			StopReason: summary.StopReason,
			Present:    summary.Present,
			Absent:     summary.Absent,
		})
	}

	st := statusOf(sess, SessionCompleted)
	st.StopReason = summary.StopReason
	st.Present = summary.Present
	st.Absent = summary.Absent
	st.FinishedAt = &finished
	s.storeStatus(ctx, sess.Key(), st)
	s.publish(ctx, webhook.EventSessionCompleted, SessionEvent{
		SessionStatus: st,
		Timing:        sess.Timing,
		PresentRolls:  summary.PresentRolls,
	})

	_ = s.auditor.Log(context.WithoutCancel(ctx), audit.Event{
		EventType:   audit.EventSessionCompleted,
		SessionID:   sess.ID.String(),
		SubjectCode: sess.SubjectCode,
		Semester:    sess.Semester,
		Branch:      sess.Branch,
		Success:     true,
		Metadata: map[string]string{
			"stop_reason": string(summary.StopReason),
			"present":     fmt.Sprint(summary.Present),
			"absent":      fmt.Sprint(summary.Absent),
			"frames":      fmt.Sprint(summary.FramesProcessed),
		},
	})
}

// SessionEvent is the webhook body for a finished session.
type SessionEvent struct {
	SessionStatus
	Timing       string   `json:"timing"`
	PresentRolls []string `json:"present_rolls,omitempty"`
}

func (s *AttendanceService) publish(ctx context.Context, eventType string, data any) {
	if s.webhooks == nil {
		return
	}
	if err := s.webhooks.Publish(context.WithoutCancel(ctx), eventType, data); err != nil {
		s.logger.Error("failed to queue webhook", "event", eventType, "error", err)
	}
}

func presentRolls(records []domain.AttendanceRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		if r.Present() {
			out = append(out, r.RollNo)
		}
	}
	return out
}

// Status returns the last known state of today's (or date's) session for a class.
func (s *AttendanceService) Status(ctx context.Context, subjectCode string, semester int, branch string, date time.Time) (*SessionStatus, error) {
	if s.state == nil {
		return nil, domain.ErrNotFound
	}
	if date.IsZero() {
		date = s.now()
	}
	key := domain.SessionKey{
		SubjectCode: strings.TrimSpace(subjectCode),
		Semester:    semester,
		Branch:      strings.ToUpper(strings.TrimSpace(branch)),
		Date:        domain.TruncateDay(date),
	}

	raw, err := s.state.Get(ctx, statusKey(key))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) || errors.Is(err, cache.ErrCacheExpired) {
			return nil, domain.ErrNotFound.WithMessage("No session recorded for this class on that date")
		}
		return nil, err
	}

	var st SessionStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("decode session status: %w", err)
	}
	return &st, nil
}

// Export writes the session workbook.
func (s *AttendanceService) Export(w io.Writer, records []domain.AttendanceRecord) error {
	if len(records) == 0 {
		return domain.ErrValidationFailed.WithError(errors.New("no records to export"))
	}
	return report.WriteWorkbook(w, report.SessionSheet(records))
}

// ExportFileName names a session workbook after its class and date.
func ExportFileName(sess *domain.Session) string {
	return fmt.Sprintf("%s_%d_%s_%s.xlsx", sess.SubjectCode, sess.Semester, sess.Branch, sess.Date.Format(domain.DateLayout))
}

// SaveExport writes the session workbook under the export directory.
func (s *AttendanceService) SaveExport(sess *domain.Session, records []domain.AttendanceRecord) (string, error) {
	if err := os.MkdirAll(s.cfg.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.cfg.ExportDir, ExportFileName(sess))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := s.Export(f, records); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	return path, nil
}

// SaveRequest is a manual edit of a single record.
type SaveRequest struct {
	RollNo      string `json:"roll"`
	Name        string `json:"name"`
	Branch      string `json:"branch"`
	Semester    int    `json:"semester"`
	SubjectCode string `json:"subject_code"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Timing      string `json:"timing,omitempty"`
}

// Save upserts a record for an existing student. The student is looked up
// by roll, semester and branch; a student promoted since the date can still
// be corrected through the record stored for that date.
func (s *AttendanceService) Save(ctx context.Context, req SaveRequest) (*domain.AttendanceRecord, error) {
	var missing []string
	for field, v := range map[string]string{
		"roll":         req.RollNo,
		"branch":       req.Branch,
		"subject_code": req.SubjectCode,
		"date":         req.Date,
		"status":       req.Status,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("missing fields: %s", strings.Join(missing, ", ")))
	}
	if !domain.ValidSemester(req.Semester) {
		return nil, domain.ErrInvalidSemester
	}

	status, err := domain.ParseAttendanceStatus(req.Status)
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}

	who, err := s.resolveOwner(ctx, req.RollNo, req.Semester, req.Branch, req.SubjectCode, date)
	if err != nil {
		return nil, err
	}

	rec := &domain.AttendanceRecord{
		IdentityKey: who.key,
		RollNo:      who.rollNo,
		Name:        who.name,
		SubjectCode: req.SubjectCode,
		Date:        date,
		Status:      status,
		Timing:      req.Timing,
		Semester:    who.semester,
		Branch:      who.branch,
	}
	if status == domain.StatusPresent {
		at := s.now()
		rec.MarkedAt = &at
	}
	if subject, err := s.subjects.Get(ctx, strings.TrimSpace(req.SubjectCode), who.semester, who.branch); err == nil {
		rec.SubjectName = subject.Name
	} else if !errors.Is(err, domain.ErrSubjectNotFound) {
		return nil, err
	}

	if err := s.ledger.Save(ctx, rec); err != nil {
		return nil, err
	}

	_ = s.auditor.Log(ctx, audit.Event{
		EventType:   audit.EventAttendanceEdited,
		SubjectCode: rec.SubjectCode,
		RollNo:      rec.RollNo,
		Semester:    rec.Semester,
		Branch:      rec.Branch,
		Success:     true,
		Metadata: map[string]string{
			"date":   rec.Date.Format(domain.DateLayout),
			"status": string(rec.Status),
		},
	})
	return rec, nil
}

// owner is who a manual record belongs to.
type owner struct {
	key      domain.IdentityKey
	rollNo   string
	name     string
	semester int
	branch   string
}

// resolveOwner finds the student a manual record is for. When the roll is no
// longer in that semester, the record already stored for the subject and
// date names the owner instead.
func (s *AttendanceService) resolveOwner(ctx context.Context, rollNo string, semester int, branch, subjectCode string, date time.Time) (owner, error) {
	rollNo = strings.TrimSpace(rollNo)
	branch = strings.ToUpper(strings.TrimSpace(branch))

	student, err := s.students.GetByRoll(ctx, rollNo, semester, branch)
	if err == nil {
		return owner{
			key:      student.IdentityKey(),
			rollNo:   student.RollNo,
			name:     student.Name,
			semester: student.Semester,
			branch:   student.Branch,
		}, nil
	}
	if !errors.Is(err, domain.ErrStudentNotFound) {
		return owner{}, err
	}

	rec, ferr := s.ledger.Find(ctx, rollNo, strings.TrimSpace(subjectCode), date, branch)
	if errors.Is(ferr, domain.ErrRecordNotFound) {
		return owner{}, err
	}
	if ferr != nil {
		return owner{}, ferr
	}
	return owner{
		key:      rec.IdentityKey,
		rollNo:   rec.RollNo,
		name:     rec.Name,
		semester: rec.Semester,
		branch:   rec.Branch,
	}, nil
}

// BulkRecord is one row of a bulk upload.
type BulkRecord struct {
	RollNo      string `json:"roll_no"`
	Name        string `json:"name"`
	Branch      string `json:"branch"`
	Semester    int    `json:"semester"`
	SubjectCode string `json:"subject_code"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Timing      string `json:"timing,omitempty"`
}

// SaveBulk stores many records, filling the subject name from the subject
// catalogue. Every row must name a known student; the whole batch is
// validated before anything is written.
func (s *AttendanceService) SaveBulk(ctx context.Context, rows []BulkRecord) (int, error) {
	if len(rows) == 0 {
		return 0, domain.ErrValidationFailed.WithError(errors.New("no attendance data provided"))
	}

	records := make([]domain.AttendanceRecord, 0, len(rows))
	names := make(map[string]string)

	for i, row := range rows {
		if strings.TrimSpace(row.RollNo) == "" || strings.TrimSpace(row.SubjectCode) == "" || strings.TrimSpace(row.Branch) == "" {
			return 0, domain.ErrValidationFailed.WithError(fmt.Errorf("row %d: roll_no, branch and subject_code are required", i))
		}
		if !domain.ValidSemester(row.Semester) {
			return 0, domain.ErrInvalidSemester.WithMessage(fmt.Sprintf("row %d: semester must be a number between 1 and 8", i))
		}
		status, err := domain.ParseAttendanceStatus(row.Status)
		if err != nil {
			return 0, domain.ErrValidationFailed.WithError(fmt.Errorf("row %d: %w", i, err))
		}
		date, err := domain.ParseDate(row.Date)
		if err != nil {
			return 0, err
		}

		who, err := s.resolveOwner(ctx, row.RollNo, row.Semester, row.Branch, row.SubjectCode, date)
		if errors.Is(err, domain.ErrStudentNotFound) {
			return 0, domain.ErrStudentNotFound.WithMessage(fmt.Sprintf("row %d: no student with roll %s", i, strings.TrimSpace(row.RollNo)))
		}
		if err != nil {
			return 0, err
		}

		rec := domain.AttendanceRecord{
			IdentityKey: who.key,
			RollNo:      who.rollNo,
			Name:        who.name,
			SubjectCode: row.SubjectCode,
			Date:        date,
			Status:      status,
			Timing:      row.Timing,
			Semester:    who.semester,
			Branch:      who.branch,
		}
		rec.Normalize()

		nameKey := fmt.Sprintf("%s:%d:%s", rec.SubjectCode, rec.Semester, rec.Branch)
		name, ok := names[nameKey]
		if !ok {
			subject, err := s.subjects.Get(ctx, rec.SubjectCode, rec.Semester, rec.Branch)
			switch {
			case err == nil:
				name = subject.Name
			case !errors.Is(err, domain.ErrSubjectNotFound):
				return 0, err
			}
			names[nameKey] = name
		}
		rec.SubjectName = name
		records = append(records, rec)
	}

	for i := range records {
		if err := s.ledger.Save(ctx, &records[i]); err != nil {
			return i, err
		}
	}

	s.logger.Info("bulk attendance stored", "records", len(records))
	return len(records), nil
}

func (s *AttendanceService) ByDate(ctx context.Context, date string, semester int) ([]domain.AttendanceRecord, error) {
	d, err := domain.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.records.List(ctx, repository.AttendanceFilter{From: d, To: d, Semester: semester})
}

func (s *AttendanceService) ByRange(ctx context.Context, start, end string, semester int) ([]domain.AttendanceRecord, error) {
	from, err := domain.ParseDate(start)
	if err != nil {
		return nil, err
	}
	to, err := domain.ParseDate(end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, domain.ErrValidationFailed.WithError(errors.New("end date is before start date"))
	}
	return s.records.List(ctx, repository.AttendanceFilter{From: from, To: to, Semester: semester})
}

func (s *AttendanceService) All(ctx context.Context) ([]domain.AttendanceRecord, error) {
	return s.records.List(ctx, repository.AttendanceFilter{})
}

func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	uid, err := parseUUID(id)
	if err != nil {
		return err
	}
	if err := s.ledger.Delete(ctx, uid); err != nil {
		return err
	}
	_ = s.auditor.Log(ctx, audit.Event{
		EventType: audit.EventAttendanceDeleted,
		Success:   true,
		Metadata:  map[string]string{"record_id": id},
	})
	return nil
}

func (s *AttendanceService) DeleteByRoll(ctx context.Context, rollNo string) (int64, error) {
	n, err := s.ledger.DeleteByRoll(ctx, rollNo)
	if err != nil {
		return 0, err
	}
	_ = s.auditor.Log(ctx, audit.Event{
		EventType: audit.EventAttendanceDeleted,
		RollNo:    strings.TrimSpace(rollNo),
		Success:   true,
		Metadata:  map[string]string{"deleted": fmt.Sprint(n)},
	})
	return n, nil
}
