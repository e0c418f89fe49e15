package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinSemester = 1
	MaxSemester = 8
)

// Student representa um aluno cadastrado com sua foto de referência
type Student struct {
	ID            uuid.UUID `json:"id"`
	RollNo        string    `json:"roll_no"`
	Name          string    `json:"name"`
	Branch        string    `json:"branch"`
	Semester      int       `json:"semester"`
	Subjects      []string  `json:"subjects,omitempty"`
	FaceImagePath string    `json:"face_image_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (s *Student) IdentityKey() IdentityKey {
	return NewIdentityKey(s.RollNo, s.Semester, s.Name, s.Branch)
}

// EnrolledIn reports whether the student takes the subject. Students without
// an explicit subject list take every subject of their class.
func (s *Student) EnrolledIn(code string) bool {
	if len(s.Subjects) == 0 {
		return true
	}
	for _, c := range s.Subjects {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(code)) {
			return true
		}
	}
	return false
}

// Normalize trims input fields, strips spaces from the name and uppercases the branch.
func (s *Student) Normalize() {
	s.RollNo = strings.TrimSpace(s.RollNo)
	s.Name = strings.ReplaceAll(strings.TrimSpace(s.Name), " ", "")
	s.Branch = strings.ToUpper(strings.TrimSpace(s.Branch))
	for i, c := range s.Subjects {
		s.Subjects[i] = strings.TrimSpace(c)
	}
}

// Validate verifica se o aluno é válido
func (s *Student) Validate() error {
	if s.RollNo == "" {
		return errors.New("roll number cannot be empty")
	}
	if strings.Contains(s.RollNo, "_") {
		return errors.New("roll number cannot contain underscores")
	}
	if s.Name == "" {
		return errors.New("name cannot be empty")
	}
	if s.Branch == "" {
		return errors.New("branch cannot be empty")
	}
	if strings.Contains(s.Branch, "_") {
		return errors.New("branch cannot contain underscores")
	}
	if !ValidSemester(s.Semester) {
		return ErrInvalidSemester
	}
	return nil
}

func ValidSemester(n int) bool {
	return n >= MinSemester && n <= MaxSemester
}
