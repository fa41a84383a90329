package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

func TestReportRepository_Counts(t *testing.T) {
	db := newTestDB(t)
	seedSchool(t, db)

	counts, err := NewReportRepository(db).Counts(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.SchoolCounts{Institutions: 1, Courses: 1, Students: 1, Subjects: 1, Grades: 1}, *counts)
}

func TestReportRepository_GradeRows(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedSchool(t, db)

	require.NoError(t, NewGradeRepository(db).Create(ctx, &domain.Grade{
		ID: "grade-2", StudentID: "stu-1", SubjectID: "sub-1", Value: 5, Period: "2026-T2",
	}))

	repo := NewReportRepository(db)

	rows, err := repo.GradeRows(ctx, ports.GradeRowFilter{CourseID: "course-1"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Ana Gomez", rows[0].StudentName)
	require.Equal(t, "Matematica", rows[0].SubjectName)
	require.Equal(t, "course-1", rows[0].CourseID)

	rows, err = repo.GradeRows(ctx, ports.GradeRowFilter{Period: "2026-T2"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.InDelta(t, 5.0, rows[0].Value, 0.001)

	rows, err = repo.GradeRows(ctx, ports.GradeRowFilter{CourseID: "other"})
	require.NoError(t, err)
	require.Empty(t, rows)
}
