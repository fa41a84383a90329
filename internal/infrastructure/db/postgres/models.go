package postgres

import (
	"time"

	"gorm.io/datatypes"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

// bootstrapClaimID is the only primary key the claims table accepts.
const bootstrapClaimID = 1

type userModel struct {
	ID          string                      `gorm:"primaryKey;size:191"`
	DisplayName string                      `gorm:"size:200"`
	Email       string                      `gorm:"size:254;index"`
	Role        string                      `gorm:"size:32;not null"`
	Permissions datatypes.JSONSlice[string] `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() *domain.User {
	perms := []string(m.Permissions)
	if perms == nil {
		perms = []string{}
	}
	return &domain.User{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		Email:       m.Email,
		Role:        m.Role,
		Permissions: perms,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) *userModel {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &userModel{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: datatypes.JSONSlice[string](perms),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// bootstrapClaimModel is a singleton row: the primary key and the check
// constraint allow exactly one claim.
type bootstrapClaimModel struct {
	ID        int    `gorm:"primaryKey;autoIncrement:false;check:bootstrap_claim_singleton,id = 1"`
	UserID    string `gorm:"size:191;not null"`
	ClaimedAt time.Time
}

func (bootstrapClaimModel) TableName() string { return "bootstrap_claims" }

type institutionModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:150;not null;index"`
	Address   string `gorm:"size:255"`
	Phone     string `gorm:"size:50"`
	Email     string `gorm:"size:254"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (institutionModel) TableName() string { return "institutions" }

func (m *institutionModel) toDomain() *domain.Institution {
	return &domain.Institution{
		ID:        m.ID,
		Name:      m.Name,
		Address:   m.Address,
		Phone:     m.Phone,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toInstitutionModel(i *domain.Institution) *institutionModel {
	return &institutionModel{
		ID:        i.ID,
		Name:      i.Name,
		Address:   i.Address,
		Phone:     i.Phone,
		Email:     i.Email,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

type courseModel struct {
	ID            string            `gorm:"primaryKey;size:36"`
	InstitutionID string            `gorm:"size:36;not null;index"`
	Institution   *institutionModel `gorm:"foreignKey:InstitutionID;constraint:OnDelete:RESTRICT"`
	Name          string            `gorm:"size:150;not null"`
	Level         string            `gorm:"size:50"`
	Year          int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (courseModel) TableName() string { return "courses" }

func (m *courseModel) toDomain() *domain.Course {
	return &domain.Course{
		ID:            m.ID,
		InstitutionID: m.InstitutionID,
		Name:          m.Name,
		Level:         m.Level,
		Year:          m.Year,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toCourseModel(c *domain.Course) *courseModel {
	return &courseModel{
		ID:            c.ID,
		InstitutionID: c.InstitutionID,
		Name:          c.Name,
		Level:         c.Level,
		Year:          c.Year,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type studentModel struct {
	ID         string       `gorm:"primaryKey;size:36"`
	CourseID   string       `gorm:"size:36;not null;index"`
	Course     *courseModel `gorm:"foreignKey:CourseID;constraint:OnDelete:RESTRICT"`
	FirstName  string       `gorm:"size:100;not null"`
	LastName   string       `gorm:"size:100;not null"`
	DocumentID string       `gorm:"size:30;not null;uniqueIndex"`
	Email      string       `gorm:"size:254"`
	BirthDate  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (studentModel) TableName() string { return "students" }

func (m *studentModel) toDomain() *domain.Student {
	return &domain.Student{
		ID:         m.ID,
		CourseID:   m.CourseID,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		DocumentID: m.DocumentID,
		Email:      m.Email,
		BirthDate:  m.BirthDate,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toStudentModel(s *domain.Student) *studentModel {
	return &studentModel{
		ID:         s.ID,
		CourseID:   s.CourseID,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		DocumentID: s.DocumentID,
		Email:      s.Email,
		BirthDate:  s.BirthDate,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

type subjectModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (subjectModel) TableName() string { return "subjects" }

func (m *subjectModel) toDomain() *domain.Subject {
	return &domain.Subject{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toSubjectModel(s *domain.Subject) *subjectModel {
	return &subjectModel{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

type gradeModel struct {
	ID        string        `gorm:"primaryKey;size:36"`
	StudentID string        `gorm:"size:36;not null;index"`
	Student   *studentModel `gorm:"foreignKey:StudentID;constraint:OnDelete:RESTRICT"`
	SubjectID string        `gorm:"size:36;not null;index"`
	Subject   *subjectModel `gorm:"foreignKey:SubjectID;constraint:OnDelete:RESTRICT"`
	Value     float64       `gorm:"not null;check:grade_value_range,value >= 0 AND value <= 10"`
	Period    string        `gorm:"size:30;not null;index"`
	Notes     string        `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (gradeModel) TableName() string { return "grades" }

func (m *gradeModel) toDomain() *domain.Grade {
	return &domain.Grade{
		ID:        m.ID,
		StudentID: m.StudentID,
		SubjectID: m.SubjectID,
		Value:     m.Value,
		Period:    m.Period,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toGradeModel(g *domain.Grade) *gradeModel {
	return &gradeModel{
		ID:        g.ID,
		StudentID: g.StudentID,
		SubjectID: g.SubjectID,
		Value:     g.Value,
		Period:    g.Period,
		Notes:     g.Notes,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}
