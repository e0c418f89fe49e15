package domain

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so errors.Is keeps working
// after WithError produced a copy.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// WithMessage returns a copy with a request specific message.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    msg,
		StatusCode: e.StatusCode,
		Err:        e.Err,
	}
}

// ErrInvalidIdentityKey is returned by ParseIdentityKey. It never reaches
// clients directly: index builds skip bad keys and log them.
var ErrInvalidIdentityKey = errors.New("invalid identity key")

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	// Precondition failures
	ErrNoIdentitiesForScope = &AppError{
		Code:       "NO_IDENTITIES_FOR_SCOPE",
		Message:    "No registered faces for this semester and branch",
		StatusCode: 422,
	}

	ErrRosterEmpty = &AppError{
		Code:       "ROSTER_EMPTY",
		Message:    "No students found for this semester and branch",
		StatusCode: 404,
	}

	ErrSubjectNotFound = &AppError{
		Code:       "SUBJECT_NOT_FOUND",
		Message:    "Subject not found for this semester and branch",
		StatusCode: 404,
	}

	ErrStudentNotFound = &AppError{
		Code:       "STUDENT_NOT_FOUND",
		Message:    "Student not found",
		StatusCode: 404,
	}

	ErrRecordNotFound = &AppError{
		Code:       "RECORD_NOT_FOUND",
		Message:    "Attendance record not found",
		StatusCode: 404,
	}

	// Conflicts
	ErrStudentExists = &AppError{
		Code:       "STUDENT_ALREADY_EXISTS",
		Message:    "Student already registered for this roll, branch and semester",
		StatusCode: 409,
	}

	ErrSubjectExists = &AppError{
		Code:       "SUBJECT_ALREADY_EXISTS",
		Message:    "Subject code already exists",
		StatusCode: 409,
	}

	ErrAttendanceAlreadyTaken = &AppError{
		Code:       "ATTENDANCE_ALREADY_TAKEN",
		Message:    "Attendance already taken for this subject today",
		StatusCode: 409,
	}

	ErrSemesterFinal = &AppError{
		Code:       "SEMESTER_FINAL",
		Message:    "Students in the final semester cannot be promoted",
		StatusCode: 409,
	}

	// Transient I/O
	ErrCaptureUnavailable = &AppError{
		Code:       "CAPTURE_UNAVAILABLE",
		Message:    "Capture device could not be opened",
		StatusCode: 503,
	}

	ErrCaptureFailed = &AppError{
		Code:       "CAPTURE_FAILED",
		Message:    "Failed to read frame from capture device",
		StatusCode: 503,
	}

	ErrEncoderUnavailable = &AppError{
		Code:       "ENCODER_UNAVAILABLE",
		Message:    "Face encoder is unavailable",
		StatusCode: 503,
	}

	// Data validation
	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 422,
	}

	ErrInvalidSemester = &AppError{
		Code:       "INVALID_SEMESTER",
		Message:    "Semester must be a number between 1 and 8",
		StatusCode: 422,
	}

	ErrInvalidDate = &AppError{
		Code:       "INVALID_DATE",
		Message:    "Invalid date format, use YYYY-MM-DD",
		StatusCode: 422,
	}
)
