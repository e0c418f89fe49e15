package handler

import (
	"bytes"
	"context"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/report"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
)

type ReportService interface {
	Generate(ctx context.Context, req service.ReportRequest) (*report.Report, error)
	Write(w io.Writer, rep *report.Report) error
}

type ReportHandler struct {
	service ReportService
}

func NewReportHandler(service ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Generate POST /v1/reports - xlsx by default, JSON with ?format=json.
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	var req service.ReportRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	rep, err := h.service.Generate(c.Context(), req)
	if err != nil {
		return err
	}

	if c.Query("format") == "json" {
		return c.JSON(rep)
	}

	var buf bytes.Buffer
	if err := h.service.Write(&buf, rep); err != nil {
		return err
	}
	return sendWorkbook(c, service.ReportFileName(rep, req), buf.Bytes())
}
