package ports

import (
	"context"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

// ListFilter carries all query parameters for listing a school entity.
type ListFilter struct {
	Equals map[string]string // column -> value; only columns the entity allows are applied
	Search string            // optional: partial, case-insensitive match on the entity's name columns
	Page   int               // 1-based
	Limit  int               // max rows per page (capped at 100 by service)
}

// Repository defines persistence operations shared by every school entity.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	// Get returns domain.ErrNotFound when no row matches.
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, entity *T) error
	// Delete returns domain.ErrHasDependents when child rows still reference id.
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*T, int64, error)
}

// GradeRowFilter narrows the grades fed to a report. Empty fields match all.
type GradeRowFilter struct {
	CourseID string
	Period   string
}

// ReportRepository reads the aggregates behind the dashboard and reports.
type ReportRepository interface {
	Counts(ctx context.Context) (*domain.SchoolCounts, error)
	GradeRows(ctx context.Context, filter GradeRowFilter) ([]domain.GradeRow, error)
}
