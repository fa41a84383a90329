package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type record interface {
	GetID() string
	SetID(id string)
	Created() time.Time
	Stamp(created, updated time.Time)
}

// recordPtr lets the generic service call record methods on *T.
type recordPtr[T any] interface {
	*T
	record
}

// reference is a foreign key that must point at an existing row.
type reference struct {
	field  string
	id     string
	exists func(ctx context.Context, id string) (bool, error)
}

// EntityService implements ports.CrudService for one school entity.
type EntityService[T any, P recordPtr[T]] struct {
	kind     string
	repo     ports.Repository[T]
	refs     func(*T) []reference
	validate func(*T) error
	logger   zerolog.Logger
}

func NewInstitutionService(repo ports.Repository[domain.Institution], logger zerolog.Logger) *EntityService[domain.Institution, *domain.Institution] {
	return &EntityService[domain.Institution, *domain.Institution]{kind: "institution", repo: repo, logger: logger}
}

func NewCourseService(
	repo ports.Repository[domain.Course],
	institutions ports.Repository[domain.Institution],
	logger zerolog.Logger,
) *EntityService[domain.Course, *domain.Course] {
	return &EntityService[domain.Course, *domain.Course]{
		kind: "course",
		repo: repo,
		refs: func(c *domain.Course) []reference {
			return []reference{{field: "institution_id", id: c.InstitutionID, exists: institutions.Exists}}
		},
		logger: logger,
	}
}

func NewStudentService(
	repo ports.Repository[domain.Student],
	courses ports.Repository[domain.Course],
	logger zerolog.Logger,
) *EntityService[domain.Student, *domain.Student] {
	return &EntityService[domain.Student, *domain.Student]{
		kind: "student",
		repo: repo,
		refs: func(s *domain.Student) []reference {
			return []reference{{field: "course_id", id: s.CourseID, exists: courses.Exists}}
		},
		logger: logger,
	}
}

func NewSubjectService(repo ports.Repository[domain.Subject], logger zerolog.Logger) *EntityService[domain.Subject, *domain.Subject] {
	return &EntityService[domain.Subject, *domain.Subject]{kind: "subject", repo: repo, logger: logger}
}

func NewGradeService(
	repo ports.Repository[domain.Grade],
	students ports.Repository[domain.Student],
	subjects ports.Repository[domain.Subject],
	logger zerolog.Logger,
) *EntityService[domain.Grade, *domain.Grade] {
	return &EntityService[domain.Grade, *domain.Grade]{
		kind: "grade",
		repo: repo,
		refs: func(g *domain.Grade) []reference {
			return []reference{
				{field: "student_id", id: g.StudentID, exists: students.Exists},
				{field: "subject_id", id: g.SubjectID, exists: subjects.Exists},
			}
		},
		validate: func(g *domain.Grade) error {
			if g.Value < 0 || g.Value > 10 {
				return domain.NewValidationError("value", "must be between 0 and 10")
			}
			return nil
		},
		logger: logger,
	}
}

// Create assigns a new ID and timestamps, checks references and stores entity.
func (s *EntityService[T, P]) Create(ctx context.Context, entity *T) (*T, error) {
	if err := s.check(ctx, entity); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	P(entity).SetID(uuid.NewString())
	P(entity).Stamp(now, now)

	if err := s.repo.Create(ctx, entity); err != nil {
		s.logger.Error().Err(err).Str("kind", s.kind).Msg("failed to create record")
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}

	s.logger.Info().Str("kind", s.kind).Str("id", P(entity).GetID()).Msg("record created")
	return entity, nil
}

func (s *EntityService[T, P]) Get(ctx context.Context, id string) (*T, error) {
	entity, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.kind, err)
	}
	return entity, nil
}

// Update replaces the stored entity with id, keeping its creation time.
func (s *EntityService[T, P]) Update(ctx context.Context, id string, entity *T) (*T, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind, err)
	}
	if err := s.check(ctx, entity); err != nil {
		return nil, err
	}

	P(entity).SetID(id)
	P(entity).Stamp(P(existing).Created(), time.Now().UTC())

	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind, err)
	}

	s.logger.Info().Str("kind", s.kind).Str("id", id).Msg("record updated")
	return entity, nil
}

func (s *EntityService[T, P]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}
	s.logger.Info().Str("kind", s.kind).Str("id", id).Msg("record deleted")
	return nil
}

// List returns a page of entities. Limit defaults to 20 and is capped at 100.
func (s *EntityService[T, P]) List(ctx context.Context, filter ports.ListFilter) (*ports.Page[*T], error) {
	filter.Page, filter.Limit = normalizePaging(filter.Page, filter.Limit)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return newPage(items, total, filter.Page, filter.Limit), nil
}

func (s *EntityService[T, P]) check(ctx context.Context, entity *T) error {
	if s.validate != nil {
		if err := s.validate(entity); err != nil {
			return err
		}
	}
	if s.refs == nil {
		return nil
	}

	verr := &domain.ValidationError{}
	for _, ref := range s.refs(entity) {
		if ref.id == "" {
			verr.Add(ref.field, "is required")
			continue
		}
		ok, err := ref.exists(ctx, ref.id)
		if err != nil {
			return fmt.Errorf("check %s: %w", ref.field, err)
		}
		if !ok {
			verr.Add(ref.field, "does not reference an existing record")
		}
	}
	return verr.OrNil()
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func newPage[T any](items []T, total int64, page, limit int) *ports.Page[T] {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}
