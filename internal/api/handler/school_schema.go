package handler

import (
	"strings"
	"time"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

const dateLayout = "2006-01-02"

// entityRequest is a validated request body that maps onto a domain entity.
type entityRequest[T any] interface {
	toEntity() *T
}

type institutionRequest struct {
	Name    string `json:"name"    validate:"required,max=150"`
	Address string `json:"address" validate:"omitempty,max=255"`
	Phone   string `json:"phone"   validate:"omitempty,max=50"`
	Email   string `json:"email"   validate:"omitempty,email"`
}

func (r *institutionRequest) toEntity() *domain.Institution {
	return &domain.Institution{
		Name:    strings.TrimSpace(r.Name),
		Address: strings.TrimSpace(r.Address),
		Phone:   strings.TrimSpace(r.Phone),
		Email:   strings.TrimSpace(r.Email),
	}
}

type courseRequest struct {
	InstitutionID string `json:"institution_id" validate:"required"`
	Name          string `json:"name"           validate:"required,max=150"`
	Level         string `json:"level"          validate:"omitempty,max=50"`
	Year          int    `json:"year"           validate:"required,gte=2000,lte=2100"`
}

func (r *courseRequest) toEntity() *domain.Course {
	return &domain.Course{
		InstitutionID: r.InstitutionID,
		Name:          strings.TrimSpace(r.Name),
		Level:         strings.TrimSpace(r.Level),
		Year:          r.Year,
	}
}

type studentRequest struct {
	CourseID   string `json:"course_id"   validate:"required"`
	FirstName  string `json:"first_name"  validate:"required,max=100"`
	LastName   string `json:"last_name"   validate:"required,max=100"`
	DocumentID string `json:"document_id" validate:"required,max=30"`
	Email      string `json:"email"       validate:"omitempty,email"`
	BirthDate  string `json:"birth_date"  validate:"omitempty,datetime=2006-01-02"`
}

func (r *studentRequest) toEntity() *domain.Student {
	s := &domain.Student{
		CourseID:   r.CourseID,
		FirstName:  strings.TrimSpace(r.FirstName),
		LastName:   strings.TrimSpace(r.LastName),
		DocumentID: strings.TrimSpace(r.DocumentID),
		Email:      strings.TrimSpace(r.Email),
	}
	if d, err := time.Parse(dateLayout, r.BirthDate); err == nil {
		s.BirthDate = &d
	}
	return s
}

type subjectRequest struct {
	Name        string `json:"name"        validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

func (r *subjectRequest) toEntity() *domain.Subject {
	return &domain.Subject{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
	}
}

type gradeRequest struct {
	StudentID string   `json:"student_id" validate:"required"`
	SubjectID string   `json:"subject_id" validate:"required"`
	Value     *float64 `json:"value"      validate:"required,gte=0,lte=10"`
	Period    string   `json:"period"     validate:"required,max=30"`
	Notes     string   `json:"notes"      validate:"omitempty,max=500"`
}

func (r *gradeRequest) toEntity() *domain.Grade {
	g := &domain.Grade{
		StudentID: r.StudentID,
		SubjectID: r.SubjectID,
		Period:    strings.TrimSpace(r.Period),
		Notes:     strings.TrimSpace(r.Notes),
	}
	if r.Value != nil {
		g.Value = *r.Value
	}
	return g
}
