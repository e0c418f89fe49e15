package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Subject representa uma disciplina de um semestre e curso
type Subject struct {
	ID       uuid.UUID `json:"id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Branch   string    `json:"branch"`
	Semester int       `json:"semester"`
}

func (s *Subject) Normalize() {
	s.Code = strings.TrimSpace(s.Code)
	s.Name = strings.TrimSpace(s.Name)
	s.Branch = strings.ToUpper(strings.TrimSpace(s.Branch))
}

func (s *Subject) Validate() error {
	if s.Code == "" {
		return errors.New("subject code cannot be empty")
	}
	if s.Name == "" {
		return errors.New("subject name cannot be empty")
	}
	if s.Branch == "" {
		return errors.New("branch cannot be empty")
	}
	if !ValidSemester(s.Semester) {
		return ErrInvalidSemester
	}
	return nil
}
