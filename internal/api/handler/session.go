package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/capture"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
)

type SessionService interface {
	Start(ctx context.Context, req service.StartRequest) (*service.SessionSummary, error)
	Status(ctx context.Context, subjectCode string, semester int, branch string, date time.Time) (*service.SessionStatus, error)
	Export(w io.Writer, records []domain.AttendanceRecord) error
}

type SessionHandler struct {
	service SessionService
	device  capture.Device
	logger  *slog.Logger
}

// NewSessionHandler wires session routes. device backs the capture probe and
// may be nil.
func NewSessionHandler(service SessionService, device capture.Device, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, device: device, logger: logger}
}

// Start POST /v1/sessions - runs a session and answers once it ends.
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	var req service.StartRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	summary, err := h.service.Start(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

// Status GET /v1/sessions/status?subject=&semester=&branch=&date=
func (h *SessionHandler) Status(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Query("semester"), false)
	if err != nil {
		return err
	}

	var date time.Time
	if raw := c.Query("date"); raw != "" {
		if date, err = domain.ParseDate(raw); err != nil {
			return err
		}
	}

	st, err := h.service.Status(c.Context(), c.Query("subject"), semester, c.Query("branch"), date)
	if err != nil {
		return err
	}
	return c.JSON(st)
}

type ExportRequest struct {
	Filename string                    `json:"filename,omitempty"`
	Records  []domain.AttendanceRecord `json:"records"`
}

// Export POST /v1/sessions/export - renders session records as a workbook.
func (h *SessionHandler) Export(c *fiber.Ctx) error {
	var req ExportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.service.Export(&buf, req.Records); err != nil {
		return err
	}

	name := req.Filename
	if name == "" {
		name = "attendance_" + time.Now().Format(domain.DateLayout) + ".xlsx"
	}
	return sendWorkbook(c, name, buf.Bytes())
}

type CaptureProbeResponse struct {
	Available  bool   `json:"available"`
	FrameBytes int    `json:"frame_bytes,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CaptureProbe GET /v1/sessions/capture-test - grabs one frame and releases the device.
func (h *SessionHandler) CaptureProbe(c *fiber.Ctx) error {
	if h.device == nil {
		return domain.ErrCaptureUnavailable.WithMessage("No capture device configured")
	}

	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	src, err := h.device.Open(ctx)
	if err != nil {
		h.logger.Warn("capture probe failed to open device", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(CaptureProbeResponse{Error: err.Error()})
	}
	defer src.Close()

	frame, err := src.Next(ctx)
	if err != nil {
		h.logger.Warn("capture probe failed to read frame", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(CaptureProbeResponse{Error: err.Error()})
	}

	return c.JSON(CaptureProbeResponse{Available: true, FrameBytes: len(frame.Data)})
}
