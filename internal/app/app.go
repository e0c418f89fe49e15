// Package app wires repositories, providers and services into a runnable
// attendance engine shared by the API server and the command line tool.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/chamada/internal/api"
	"github.com/saturnino-fabrica-de-software/chamada/internal/audit"
	"github.com/saturnino-fabrica-de-software/chamada/internal/cache"
	"github.com/saturnino-fabrica-de-software/chamada/internal/capture"
	"github.com/saturnino-fabrica-de-software/chamada/internal/config"
	"github.com/saturnino-fabrica-de-software/chamada/internal/face"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ledger"
	"github.com/saturnino-fabrica-de-software/chamada/internal/metrics"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
	"github.com/saturnino-fabrica-de-software/chamada/internal/recognition"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
	"github.com/saturnino-fabrica-de-software/chamada/internal/session"
	"github.com/saturnino-fabrica-de-software/chamada/internal/webhook"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

// Pool is what the engine needs from the database handle.
type Pool interface {
	repository.PgxPool
	Ping(ctx context.Context) error
}

type App struct {
	Registration *service.RegistrationService
	Students     *service.StudentService
	Subjects     *service.SubjectService
	Attendance   *service.AttendanceService
	Reports      *service.ReportService

	Device  capture.Device
	Hub     *ws.Hub
	Metrics *metrics.Manager

	pool    Pool
	janitor *cache.Janitor
	outbox  *webhook.Worker
	logger  *slog.Logger
}

type options struct {
	encoder  provider.FaceEncoder
	detector provider.FaceDetector
	device   capture.Device
	hub      bool
	metrics  *metrics.Manager
}

type Option func(*options)

// WithEncoder replaces the encoder named by ENCODER.
func WithEncoder(e provider.FaceEncoder) Option {
	return func(o *options) { o.encoder = e }
}

// WithDetector replaces the registration gate named by FACE_DETECTOR.
func WithDetector(d provider.FaceDetector) Option {
	return func(o *options) { o.detector = d }
}

// WithDevice replaces the capture device named by CAPTURE_MODE.
func WithDevice(d capture.Device) Option {
	return func(o *options) { o.device = d }
}

// WithoutHub disables live session events.
func WithoutHub() Option {
	return func(o *options) { o.hub = false }
}

func WithMetrics(m *metrics.Manager) Option {
	return func(o *options) { o.metrics = m }
}

func New(ctx context.Context, cfg *config.Config, pool Pool, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{hub: true}
	for _, opt := range opts {
		opt(&o)
	}

	var err error
	if o.encoder == nil {
		if o.encoder, err = face.NewEncoder(cfg); err != nil {
			return nil, err
		}
	}
	if o.detector == nil {
		if o.detector, err = face.NewDetector(ctx, cfg); err != nil {
			return nil, err
		}
	}
	if o.device == nil {
		if o.device, err = capture.NewDevice(cfg); err != nil {
			return nil, err
		}
	}
	if o.metrics == nil {
		o.metrics = metrics.NewManager()
	}

	students := repository.NewStudentRepository(pool)
	subjects := repository.NewSubjectRepository(pool)
	faces := repository.NewFaceRepository(pool)
	records := repository.NewAttendanceRepository(pool)
	pgCache := cache.NewPGCache(pool)
	auditor := audit.NewSlogLogger(logger)

	// one camera serves one session at a time, across every instance
	o.device = capture.Exclusive(o.device, capture.WithLocker(pgCache, captureLockKey(cfg), service.AttendanceConfigFrom(cfg).LockTTL))

	a := &App{
		Device:  o.device,
		Metrics: o.metrics,
		pool:    pool,
		logger:  logger,
	}
	if cfg.CacheCleanupInterval > 0 {
		a.janitor = cache.NewJanitor(pgCache, logger, cfg.CacheCleanupInterval)
	}

	var publisher service.EventPublisher
	if len(cfg.WebhookURLs) > 0 {
		endpoints := make([]webhook.Endpoint, 0, len(cfg.WebhookURLs))
		for _, u := range cfg.WebhookURLs {
			endpoints = append(endpoints, webhook.Endpoint{URL: u, Secret: cfg.WebhookSecret})
		}
		p := webhook.NewPublisher(pool, endpoints, cfg.WebhookMaxAttempts, logger)
		a.outbox = webhook.NewWorker(pool, p, logger, cfg.WebhookPollInterval)
		publisher = p
	}

	var notifier session.Notifier
	if o.hub {
		a.Hub = ws.NewHub()
		notifier = a.Hub
	}

	led := ledger.New(records)
	matcher := recognition.NewMatcher(cfg.MatchTolerance, cfg.MatchWorkers)
	runner := session.NewRunner(o.device, o.encoder, matcher, led, logger, session.RunnerConfig{
		MaxDuration:                cfg.SessionMaxDuration,
		MaxConsecutiveEncodeErrors: cfg.MaxConsecutiveEncodeErrors,
	}, session.WithNotifier(notifier), session.WithObserver(o.metrics))

	a.Registration = service.NewRegistrationService(students, faces, o.encoder, o.detector, auditor, logger)
	a.Students = service.NewStudentService(students, auditor)
	a.Subjects = service.NewSubjectService(subjects, auditor)
	a.Reports = service.NewReportService(students, records, subjects)
	a.Attendance = service.NewAttendanceService(service.AttendanceDeps{
		Ledger:   led,
		Subjects: subjects,
		Students: students,
		Records:  records,
		Index:    recognition.NewIndexBuilder(faces, logger),
		Runner:   runner,
		State:    pgCache,
		Notifier: notifier,
		Webhooks: publisher,
		Metrics:  o.metrics,
		Auditor:  auditor,
	}, service.AttendanceConfigFrom(cfg), logger)

	logger.Info("attendance engine ready",
		"encoder", cfg.Encoder,
		"detector", cfg.FaceDetector,
		"capture_mode", cfg.CaptureMode,
		"tolerance", matcher.Tolerance(),
		"absence_scope", cfg.AbsenceScope,
		"webhooks", len(cfg.WebhookURLs),
	)
	return a, nil
}

// Run drives the background workers until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if a.Hub != nil {
		g.Go(func() error {
			a.Hub.Run(ctx)
			return nil
		})
	}
	if a.janitor != nil {
		g.Go(func() error {
			a.janitor.Run(ctx)
			return nil
		})
	}
	if a.outbox != nil {
		g.Go(func() error {
			a.outbox.Run(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("background workers: %w", err)
	}
	return nil
}

// Dependencies exposes the services to the HTTP router.
func (a *App) Dependencies() *api.Dependencies {
	return &api.Dependencies{
		Registration: a.Registration,
		Students:     a.Students,
		Subjects:     a.Subjects,
		Sessions:     a.Attendance,
		Attendance:   a.Attendance,
		Reports:      a.Reports,
		Device:       a.Device,
		Hub:          a.Hub,
		DB:           a.pool,
	}
}

func captureLockKey(cfg *config.Config) string {
	origin := cfg.CaptureURL
	if cfg.CaptureMode == capture.ModeDirectory {
		origin = cfg.CaptureDir
	}
	return "capture:lock:" + origin
}
