package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/repository"
	"github.com/saturnino-fabrica-de-software/chamada/internal/service"
)

type RegistrationService interface {
	Register(ctx context.Context, req service.RegisterRequest) (*domain.Student, error)
}

type StudentService interface {
	List(ctx context.Context, f repository.StudentFilter) ([]domain.Student, error)
	Lookup(ctx context.Context, rollNo string, semester int, branch string) (*domain.Student, error)
	Promote(ctx context.Context, req service.PromoteRequest) (*service.PromotionResult, error)
}

type StudentHandler struct {
	registration RegistrationService
	students     StudentService
}

func NewStudentHandler(registration RegistrationService, students StudentService) *StudentHandler {
	return &StudentHandler{registration: registration, students: students}
}

type RegisterStudentResponse struct {
	Message     string          `json:"message"`
	IdentityKey string          `json:"identity_key"`
	Student     *domain.Student `json:"student"`
}

// Register POST /v1/students
func (h *StudentHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	student, err := h.registration.Register(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(RegisterStudentResponse{
		Message:     "Student registered successfully",
		IdentityKey: student.IdentityKey().String(),
		Student:     student,
	})
}

// List GET /v1/students?semester=&branch=&subject=
func (h *StudentHandler) List(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Query("semester"), true)
	if err != nil {
		return err
	}
	return h.list(c, repository.StudentFilter{
		Semester: semester,
		Branch:   c.Query("branch"),
		Subject:  c.Query("subject"),
	})
}

// BySemester GET /v1/students/semester/:semester
func (h *StudentHandler) BySemester(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Params("semester"), false)
	if err != nil {
		return err
	}
	return h.list(c, repository.StudentFilter{Semester: semester})
}

// BySemesterAndSubject GET /v1/students/semester/:semester/subject/:code
func (h *StudentHandler) BySemesterAndSubject(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Params("semester"), false)
	if err != nil {
		return err
	}
	return h.list(c, repository.StudentFilter{Semester: semester, Subject: c.Params("code")})
}

func (h *StudentHandler) list(c *fiber.Ctx, f repository.StudentFilter) error {
	students, err := h.students.List(c.Context(), f)
	if err != nil {
		return err
	}
	if students == nil {
		students = []domain.Student{}
	}
	return c.JSON(students)
}

// Lookup GET /v1/students/lookup?roll=&branch=&semester=
func (h *StudentHandler) Lookup(c *fiber.Ctx) error {
	semester, err := semesterParam(c.Query("semester"), false)
	if err != nil {
		return err
	}
	student, err := h.students.Lookup(c.Context(), c.Query("roll"), semester, c.Query("branch"))
	if err != nil {
		return err
	}
	return c.JSON(student)
}

// Promote POST /v1/students/promote
func (h *StudentHandler) Promote(c *fiber.Ctx) error {
	var req service.PromoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Branch = strings.TrimSpace(req.Branch)

	res, err := h.students.Promote(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}
