package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/chamada/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/chamada/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/chamada/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/chamada/internal/capture"
	"github.com/saturnino-fabrica-de-software/chamada/internal/metrics"
	"github.com/saturnino-fabrica-de-software/chamada/internal/ws"
)

// Dependencies carries the services behind the HTTP surface. A nil
// Dependencies only mounts docs and health routes.
type Dependencies struct {
	Registration handler.RegistrationService
	Students     handler.StudentService
	Subjects     handler.SubjectService
	Sessions     handler.SessionService
	Attendance   handler.AttendanceService
	Reports      handler.ReportService
	Device       capture.Device
	Hub          *ws.Hub
	DB           handler.Pinger
}

type Router struct {
	app     *fiber.App
	logger  *slog.Logger
	deps    *Dependencies
	metrics *metrics.Manager
}

func NewRouter(logger *slog.Logger, deps *Dependencies, m *metrics.Manager) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Chamada API",
		BodyLimit:    16 * 1024 * 1024,
	})

	return &Router{
		app:     app,
		logger:  logger,
		deps:    deps,
		metrics: m,
	}
}

func (r *Router) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Logger(r.logger))
	if r.metrics != nil {
		r.app.Use(middleware.Metrics(r.metrics))
	}
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var db handler.Pinger
	if r.deps != nil {
		db = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.metrics != nil {
		r.app.Get("/metrics", adaptor.HTTPHandler(r.metrics.Handler()))
	}

	if r.deps == nil {
		return
	}

	v1 := r.app.Group("/v1")

	students := handler.NewStudentHandler(r.deps.Registration, r.deps.Students)
	v1.Post("/students", students.Register)
	v1.Get("/students", students.List)
	v1.Get("/students/lookup", students.Lookup)
	v1.Post("/students/promote", students.Promote)
	v1.Get("/students/semester/:semester", students.BySemester)
	v1.Get("/students/semester/:semester/subject/:code", students.BySemesterAndSubject)

	subjects := handler.NewSubjectHandler(r.deps.Subjects)
	v1.Post("/subjects", subjects.Create)
	v1.Get("/subjects", subjects.List)
	v1.Get("/subjects/codes", subjects.Codes)
	v1.Get("/subjects/semester/:semester", subjects.BySemester)
	v1.Get("/subjects/semester/:semester/branch/:branch", subjects.BySemesterAndBranch)

	sessions := handler.NewSessionHandler(r.deps.Sessions, r.deps.Device, r.logger)
	v1.Post("/sessions", sessions.Start)
	v1.Get("/sessions/status", sessions.Status)
	v1.Post("/sessions/export", sessions.Export)
	v1.Get("/sessions/capture-test", sessions.CaptureProbe)
	if r.deps.Hub != nil {
		v1.Get("/sessions/ws", ws.UpgradeMiddleware(), ws.Handler(r.deps.Hub))
	}

	attendance := handler.NewAttendanceHandler(r.deps.Attendance)
	v1.Get("/attendance", attendance.ByDate)
	v1.Get("/attendance/range", attendance.ByRange)
	v1.Get("/attendance/all", attendance.All)
	v1.Post("/attendance", attendance.Save)
	v1.Post("/attendance/bulk", attendance.Bulk)
	v1.Delete("/attendance/roll/:roll", attendance.DeleteByRoll)
	v1.Delete("/attendance/:id", attendance.Delete)

	reports := handler.NewReportHandler(r.deps.Reports)
	v1.Post("/reports", reports.Generate)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

// Shutdown stops accepting requests. Background workers are owned by the
// caller.
func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
