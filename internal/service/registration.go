package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/chamada/internal/audit"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

type StudentWriterInterface interface {
	Create(ctx context.Context, s *domain.Student) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type FaceRepositoryInterface interface {
	Create(ctx context.Context, face *domain.Face) error
}

type RegisterRequest struct {
	RollNo   string   `json:"roll_no"`
	Name     string   `json:"name"`
	Branch   string   `json:"branch"`
	Semester int      `json:"semester"`
	Subjects []string `json:"subjects,omitempty"`
	// Image is a base64 JPEG or PNG, optionally as a data URL.
	Image string `json:"image"`
}

type RegistrationService struct {
	students StudentWriterInterface
	faces    FaceRepositoryInterface
	encoder  provider.FaceEncoder
	detector provider.FaceDetector
	auditor  audit.Logger
	logger   *slog.Logger
}

// NewRegistrationService wires registration. detector may be nil, in which
// case the encoder alone decides whether the image has a face.
func NewRegistrationService(
	students StudentWriterInterface,
	faces FaceRepositoryInterface,
	encoder provider.FaceEncoder,
	detector provider.FaceDetector,
	auditor audit.Logger,
	logger *slog.Logger,
) *RegistrationService {
	if auditor == nil {
		auditor = &audit.NoOpLogger{}
	}
	return &RegistrationService{
		students: students,
		faces:    faces,
		encoder:  encoder,
		detector: detector,
		auditor:  auditor,
		logger:   logger.With("component", "registration"),
	}
}

// Register stores a student and the encoding of the first face found in the
// image. If the face cannot be stored the student row is removed again.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (*domain.Student, error) {
	student := &domain.Student{
		ID:       uuid.New(),
		RollNo:   req.RollNo,
		Name:     req.Name,
		Branch:   req.Branch,
		Semester: req.Semester,
		Subjects: req.Subjects,
	}
	student.Normalize()
	if err := student.Validate(); err != nil {
		if errors.Is(err, domain.ErrInvalidSemester) {
			return nil, err
		}
		return nil, domain.ErrValidationFailed.WithError(err)
	}
	if strings.TrimSpace(req.Image) == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}

	img, err := DecodeImage(req.Image)
	if err != nil {
		return nil, err
	}

	if s.detector != nil {
		detected, err := s.detector.DetectFaces(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("roll %s: detect faces: %w", student.RollNo, err)
		}
		if len(detected) == 0 {
			return nil, domain.ErrNoFaceDetected
		}
	}

	encoded, err := s.encoder.Encode(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("roll %s: encode face: %w", student.RollNo, err)
	}
	if len(encoded) == 0 || len(encoded[0].Encoding) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}

	face := &domain.Face{
		ID:          uuid.New(),
		StudentID:   student.ID,
		IdentityKey: student.IdentityKey(),
		Encoding:    encoded[0].Encoding,
	}
	if err := s.faces.Create(ctx, face); err != nil {
		s.undo(ctx, student, err)
		return nil, fmt.Errorf("roll %s: store face: %w", student.RollNo, err)
	}

	_ = s.auditor.Log(ctx, audit.Event{
		EventType: audit.EventStudentRegistered,
		RollNo:    student.RollNo,
		Semester:  student.Semester,
		Branch:    student.Branch,
		Success:   true,
		Metadata: map[string]string{
			"identity_key": face.IdentityKey.String(),
			"faces_found":  fmt.Sprint(len(encoded)),
		},
	})

	return student, nil
}

// undo removes a half registered student. It runs on a fresh context so a
// cancelled request still cleans up.
func (s *RegistrationService) undo(ctx context.Context, student *domain.Student, cause error) {
	cleanupCtx := context.WithoutCancel(ctx)
	event := audit.Event{
		EventType: audit.EventRegistrationUndone,
		RollNo:    student.RollNo,
		Semester:  student.Semester,
		Branch:    student.Branch,
		Success:   true,
		Error:     cause.Error(),
	}
	if err := s.students.Delete(cleanupCtx, student.ID); err != nil && !errors.Is(err, domain.ErrStudentNotFound) {
		s.logger.Error("failed to remove partially registered student",
			"roll_no", student.RollNo,
			"student_id", student.ID,
			"error", err,
		)
		event.Success = false
	}
	_ = s.auditor.Log(cleanupCtx, event)
}

// DecodeImage accepts raw base64 or a data URL such as
// "data:image/jpeg;base64,...".
func DecodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, domain.ErrInvalidImage.WithError(errors.New("data URL without payload"))
		}
		s = s[i+1:]
	}

	img, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	if len(img) == 0 {
		return nil, domain.ErrInvalidImage.WithError(errors.New("empty image"))
	}
	return img, nil
}
