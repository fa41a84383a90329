package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// ReportService computes dashboard and grade report data. Averages are
// rounded to two decimals.
type ReportService struct {
	repo   ports.ReportRepository
	logger zerolog.Logger
}

func NewReportService(repo ports.ReportRepository, logger zerolog.Logger) *ReportService {
	return &ReportService{repo: repo, logger: logger}
}

func (s *ReportService) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	rows, err := s.repo.GradeRows(ctx, ports.GradeRowFilter{})
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}

	type acc struct {
		name  string
		sum   float64
		count int
	}
	bySubject := make(map[string]*acc)
	var sum float64
	for _, r := range rows {
		sum += r.Value
		a, ok := bySubject[r.SubjectID]
		if !ok {
			a = &acc{name: r.SubjectName}
			bySubject[r.SubjectID] = a
		}
		a.sum += r.Value
		a.count++
	}

	averages := make([]domain.SubjectAverage, 0, len(bySubject))
	for id, a := range bySubject {
		averages = append(averages, domain.SubjectAverage{
			SubjectID:   id,
			SubjectName: a.name,
			Average:     round2(a.sum / float64(a.count)),
			Count:       a.count,
		})
	}
	sort.Slice(averages, func(i, j int) bool {
		if averages[i].SubjectName != averages[j].SubjectName {
			return averages[i].SubjectName < averages[j].SubjectName
		}
		return averages[i].SubjectID < averages[j].SubjectID
	})

	summary := &domain.DashboardSummary{
		Counts:           *counts,
		AverageBySubject: averages,
	}
	if len(rows) > 0 {
		summary.OverallAverage = round2(sum / float64(len(rows)))
	}
	return summary, nil
}

// GradeReport builds one row per student. A student's average is the mean of
// their subject averages; the pass rate is the percentage of students whose
// average reaches domain.PassingGrade.
func (s *ReportService) GradeReport(ctx context.Context, filter ports.ReportFilter) (*domain.GradeReport, error) {
	rows, err := s.repo.GradeRows(ctx, ports.GradeRowFilter{CourseID: filter.CourseID, Period: filter.Period})
	if err != nil {
		return nil, fmt.Errorf("grade report: %w", err)
	}

	type mark struct {
		sum   float64
		count int
	}
	type student struct {
		id       string
		name     string
		subjects map[string]*mark
	}
	students := make(map[string]*student)
	for _, r := range rows {
		st, ok := students[r.StudentID]
		if !ok {
			st = &student{id: r.StudentID, name: r.StudentName, subjects: make(map[string]*mark)}
			students[r.StudentID] = st
		}
		m, ok := st.subjects[r.SubjectName]
		if !ok {
			m = &mark{}
			st.subjects[r.SubjectName] = m
		}
		m.sum += r.Value
		m.count++
	}

	report := &domain.GradeReport{
		CourseID: filter.CourseID,
		Period:   filter.Period,
		Rows:     make([]domain.StudentReportRow, 0, len(students)),
	}
	var courseSum float64
	passed := 0
	for _, st := range students {
		row := domain.StudentReportRow{
			StudentID:      st.id,
			StudentName:    st.name,
			SubjectAverage: make(map[string]float64, len(st.subjects)),
		}
		var total float64
		for name, m := range st.subjects {
			avg := m.sum / float64(m.count)
			row.SubjectAverage[name] = round2(avg)
			total += avg
		}
		avg := total / float64(len(st.subjects))
		row.Average = round2(avg)
		row.Passed = avg >= domain.PassingGrade
		if row.Passed {
			passed++
		}
		courseSum += avg
		report.Rows = append(report.Rows, row)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].StudentName != report.Rows[j].StudentName {
			return report.Rows[i].StudentName < report.Rows[j].StudentName
		}
		return report.Rows[i].StudentID < report.Rows[j].StudentID
	})

	if n := len(report.Rows); n > 0 {
		report.CourseAverage = round2(courseSum / float64(n))
		report.PassRate = round2(float64(passed) * 100 / float64(n))
	}

	s.logger.Debug().
		Str("course_id", filter.CourseID).
		Str("period", filter.Period).
		Int("students", len(report.Rows)).
		Msg("grade report built")
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
