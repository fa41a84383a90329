package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/metrics"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// CrudHandler serves list, read, create, update and delete for one school
// entity. R is the request body type bound on writes.
type CrudHandler[T any, R any, PR interface {
	*R
	entityRequest[T]
}] struct {
	entity  string
	service ports.CrudService[T]
	filters []string
}

func NewInstitutionHandler(svc ports.CrudService[domain.Institution]) *CrudHandler[domain.Institution, institutionRequest, *institutionRequest] {
	return &CrudHandler[domain.Institution, institutionRequest, *institutionRequest]{entity: "institution", service: svc}
}

func NewCourseHandler(svc ports.CrudService[domain.Course]) *CrudHandler[domain.Course, courseRequest, *courseRequest] {
	return &CrudHandler[domain.Course, courseRequest, *courseRequest]{
		entity:  "course",
		service: svc,
		filters: []string{"institution_id", "level"},
	}
}

func NewStudentHandler(svc ports.CrudService[domain.Student]) *CrudHandler[domain.Student, studentRequest, *studentRequest] {
	return &CrudHandler[domain.Student, studentRequest, *studentRequest]{
		entity:  "student",
		service: svc,
		filters: []string{"course_id"},
	}
}

func NewSubjectHandler(svc ports.CrudService[domain.Subject]) *CrudHandler[domain.Subject, subjectRequest, *subjectRequest] {
	return &CrudHandler[domain.Subject, subjectRequest, *subjectRequest]{entity: "subject", service: svc}
}

func NewGradeHandler(svc ports.CrudService[domain.Grade]) *CrudHandler[domain.Grade, gradeRequest, *gradeRequest] {
	return &CrudHandler[domain.Grade, gradeRequest, *gradeRequest]{
		entity:  "grade",
		service: svc,
		filters: []string{"student_id", "subject_id", "period"},
	}
}

// List handles GET /api/v1/<entities>?page=&limit=&q= plus the entity's
// equality filters.
func (h *CrudHandler[T, R, PR]) List(c echo.Context) error {
	page, limit := pageParams(c)
	filter := ports.ListFilter{
		Equals: make(map[string]string, len(h.filters)),
		Search: strings.TrimSpace(c.QueryParam("q")),
		Page:   page,
		Limit:  limit,
	}
	for _, f := range h.filters {
		if v := strings.TrimSpace(c.QueryParam(f)); v != "" {
			filter.Equals[f] = v
		}
	}

	result, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// Get handles GET /api/v1/<entities>/:id.
func (h *CrudHandler[T, R, PR]) Get(c echo.Context) error {
	entity, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entity)
}

// Create handles POST /api/v1/<entities>.
func (h *CrudHandler[T, R, PR]) Create(c echo.Context) error {
	entity, err := h.decode(c)
	if err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), entity)
	if err != nil {
		return err
	}
	metrics.SchoolWritesTotal.WithLabelValues(h.entity, "create").Inc()
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/<entities>/:id. The body replaces every
// writable field.
func (h *CrudHandler[T, R, PR]) Update(c echo.Context) error {
	entity, err := h.decode(c)
	if err != nil {
		return err
	}

	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), entity)
	if err != nil {
		return err
	}
	metrics.SchoolWritesTotal.WithLabelValues(h.entity, "update").Inc()
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/<entities>/:id.
func (h *CrudHandler[T, R, PR]) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.SchoolWritesTotal.WithLabelValues(h.entity, "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *CrudHandler[T, R, PR]) decode(c echo.Context) (*T, error) {
	req := PR(new(R))
	if err := c.Bind(req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return nil, err
	}
	return req.toEntity(), nil
}
