package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// ReportRepository implements ports.ReportRepository using gorm.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Counts(ctx context.Context) (*domain.SchoolCounts, error) {
	db := r.db.WithContext(ctx)
	counts := &domain.SchoolCounts{}

	targets := []struct {
		model any
		dst   *int64
	}{
		{&institutionModel{}, &counts.Institutions},
		{&courseModel{}, &counts.Courses},
		{&studentModel{}, &counts.Students},
		{&subjectModel{}, &counts.Subjects},
		{&gradeModel{}, &counts.Grades},
	}
	for _, t := range targets {
		if err := db.Model(t.model).Count(t.dst).Error; err != nil {
			return nil, storageError("count school entities", err)
		}
	}
	return counts, nil
}

// gradeRowScan is the projection read by GradeRows.
type gradeRowScan struct {
	StudentID   string
	FirstName   string
	LastName    string
	CourseID    string
	SubjectID   string
	SubjectName string
	Period      string
	Value       float64
}

func (r *ReportRepository) GradeRows(ctx context.Context, filter ports.GradeRowFilter) ([]domain.GradeRow, error) {
	q := r.db.WithContext(ctx).
		Table("grades").
		Select("grades.student_id, students.first_name, students.last_name, students.course_id, " +
			"grades.subject_id, subjects.name AS subject_name, grades.period, grades.value").
		Joins("JOIN students ON students.id = grades.student_id").
		Joins("JOIN subjects ON subjects.id = grades.subject_id")
	if filter.CourseID != "" {
		q = q.Where("students.course_id = ?", filter.CourseID)
	}
	if filter.Period != "" {
		q = q.Where("grades.period = ?", filter.Period)
	}

	var scanned []gradeRowScan
	if err := q.Order("grades.student_id ASC, grades.subject_id ASC").Scan(&scanned).Error; err != nil {
		return nil, storageError("read grade rows", err)
	}

	rows := make([]domain.GradeRow, 0, len(scanned))
	for _, s := range scanned {
		rows = append(rows, domain.GradeRow{
			StudentID:   s.StudentID,
			StudentName: strings.TrimSpace(s.FirstName + " " + s.LastName),
			CourseID:    s.CourseID,
			SubjectID:   s.SubjectID,
			SubjectName: s.SubjectName,
			Period:      s.Period,
			Value:       s.Value,
		})
	}
	return rows, nil
}
