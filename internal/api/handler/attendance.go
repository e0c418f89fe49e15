package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
)

type AttendanceService interface {
	Save(ctx context.Context, req service.SaveRequest) (*domain.AttendanceRecord, error)
	SaveBulk(ctx context.Context, rows []service.BulkRecord) (int, error)
	ByDate(ctx context.Context, date string, semester int) ([]domain.AttendanceRecord, error)
	ByRange(ctx context.Context, start, end string, semester int) ([]domain.AttendanceRecord, error)
	All(ctx context.Context) ([]domain.AttendanceRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteByRoll(ctx context.Context, rollNo string) (int64, error)
}

type AttendanceHandler struct {
	service AttendanceService
}

func NewAttendanceHandler(service AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

func sendRecords(c *fiber.Ctx, records []domain.AttendanceRecord, err error) error {
	if err != nil {
		return err
	}
	if records == nil {
		records = []domain.AttendanceRecord{}
	}
	return c.JSON(records)
}

// ByDate GET /v1/attendance?date=&semester=
func (h *AttendanceHandler) ByDate(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Query("semester"), true)
	if err != nil {
		return err
	}
	records, err := h.service.ByDate(c.Context(), c.Query("date"), semester)
	return sendRecords(c, records, err)
}

// ByRange GET /v1/attendance/range?start=&end=&semester=
func (h *AttendanceHandler) ByRange(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Query("semester"), true)
	if err != nil {
		return err
	}
	records, err := h.service.ByRange(c.Context(), c.Query("start"), c.Query("end"), semester)
	return sendRecords(c, records, err)
}

// All GET /v1/attendance/all
func (h *AttendanceHandler) All(c *fiber.Ctx) error {
	records, err := h.service.All(c.Context())
	return sendRecords(c, records, err)
}

// Save POST /v1/attendance
func (h *AttendanceHandler) Save(c *fiber.Ctx) error {
	var req service.SaveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	rec, err := h.service.Save(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Attendance saved", "record": rec})
}

// Bulk POST /v1/attendance/bulk
func (h *AttendanceHandler) Bulk(c *fiber.Ctx) error {
	var rows []service.BulkRecord
	if err := parseBody(c, &rows); err != nil {
		return err
	}
	n, err := h.service.SaveBulk(c.Context(), rows)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Attendance records updated successfully", "saved": n})
}

// Delete DELETE /v1/attendance/:id
func (h *AttendanceHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteByRoll DELETE /v1/attendance/roll/:roll
func (h *AttendanceHandler) DeleteByRoll(c *fiber.Ctx) error {
	n, err := h.service.DeleteByRoll(c.Context(), c.Params("roll"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": n})
}
