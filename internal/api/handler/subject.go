package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

type SubjectService interface {
	Create(ctx context.Context, subject *domain.Subject) error
	List(ctx context.Context, semester int, branch string) ([]domain.Subject, error)
	DistinctCodes(ctx context.Context, semester int) ([]string, error)
}

type SubjectHandler struct {
	service SubjectService
}

func NewSubjectHandler(service SubjectService) *SubjectHandler {
	return &SubjectHandler{service: service}
}

type CreateSubjectRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Branch   string `json:"branch"`
	Semester int    `json:"semester"`
}

// Create POST /v1/subjects
func (h *SubjectHandler) Create(c *fiber.Ctx) error {
	var req CreateSubjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	subject := &domain.Subject{Code: req.Code, Name: req.Name, Branch: req.Branch, Semester: req.Semester}
	if err := h.service.Create(c.Context(), subject); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(subject)
}

// List GET /v1/subjects
func (h *SubjectHandler) List(c *fiber.Ctx) error {
	return h.list(c, 0, "")
}

// BySemester GET /v1/subjects/semester/:semester
func (h *SubjectHandler) BySemester(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Params("semester"), false)
	if err != nil {
		return err
	}
	return h.list(c, semester, "")
}

// BySemesterAndBranch GET /v1/subjects/semester/:semester/branch/:branch
func (h *SubjectHandler) BySemesterAndBranch(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Params("semester"), false)
	if err != nil {
		return err
	}
	return h.list(c, semester, c.Params("branch"))
}

func (h *SubjectHandler) list(c *fiber.Ctx, semester int, branch string) error {
	subjects, err := h.service.List(c.Context(), semester, branch)
	if err != nil {
		return err
	}
	if subjects == nil {
		subjects = []domain.Subject{}
	}
	return c.JSON(subjects)
}

// Codes GET /v1/subjects/codes?semester=
func (h *SubjectHandler) Codes(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Query("semester"), true)
	if err != nil {
		return err
	}
	codes, err := h.service.DistinctCodes(c.Context(), semester)
	if err != nil {
		return err
	}
	if codes == nil {
		codes = []string{}
	}
	return c.JSON(fiber.Map{"codes": codes})
}
