package ports

import (
	"context"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

// Page is one page of a list response.
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CrudService defines use-case operations for a school entity.
type CrudService[T any] interface {
	Create(ctx context.Context, entity *T) (*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, entity *T) (*T, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) (*Page[*T], error)
}

// ReportFilter selects the grades a report covers.
type ReportFilter struct {
	CourseID string
	Period   string
}

// ReportService computes dashboard and report data.
type ReportService interface {
	DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
	GradeReport(ctx context.Context, filter ReportFilter) (*domain.GradeReport, error)
}
