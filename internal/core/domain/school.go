package domain

import "time"

// PassingGrade is the lowest grade value that counts as passed.
const PassingGrade = 6.0

type Institution struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Course struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	Name          string    `json:"name"`
	Level         string    `json:"level,omitempty"`
	Year          int       `json:"year"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Student struct {
	ID         string     `json:"id"`
	CourseID   string     `json:"course_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	DocumentID string     `json:"document_id"`
	Email      string     `json:"email,omitempty"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Grade is a single mark on the 0-10 scale for a student in a subject and
// grading period.
type Grade struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	SubjectID string    `json:"subject_id"`
	Value     float64   `json:"value"`
	Period    string    `json:"period"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Institution) GetID() string { return i.ID }
func (i *Institution) SetID(id string) { i.ID = id }
func (i *Institution) Created() time.Time { return i.CreatedAt }
func (i *Institution) Stamp(created, updated time.Time) {
	i.CreatedAt, i.UpdatedAt = created, updated
}

func (c *Course) GetID() string { return c.ID }
func (c *Course) SetID(id string) { c.ID = id }
func (c *Course) Created() time.Time { return c.CreatedAt }
func (c *Course) Stamp(created, updated time.Time) {
	c.CreatedAt, c.UpdatedAt = created, updated
}

func (s *Student) GetID() string { return s.ID }
func (s *Student) SetID(id string) { s.ID = id }
func (s *Student) Created() time.Time { return s.CreatedAt }
func (s *Student) Stamp(created, updated time.Time) {
	s.CreatedAt, s.UpdatedAt = created, updated
}

// FullName returns "first last".
func (s *Student) FullName() string { return s.FirstName + " " + s.LastName }

func (s *Subject) GetID() string { return s.ID }
func (s *Subject) SetID(id string) { s.ID = id }
func (s *Subject) Created() time.Time { return s.CreatedAt }
func (s *Subject) Stamp(created, updated time.Time) {
	s.CreatedAt, s.UpdatedAt = created, updated
}

func (g *Grade) GetID() string { return g.ID }
func (g *Grade) SetID(id string) { g.ID = id }
func (g *Grade) Created() time.Time { return g.CreatedAt }
func (g *Grade) Stamp(created, updated time.Time) {
	g.CreatedAt, g.UpdatedAt = created, updated
}
