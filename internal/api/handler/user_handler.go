package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/middleware"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// UserHandler serves user administration.
type UserHandler struct {
	identity ports.IdentityService
}

func NewUserHandler(identity ports.IdentityService) *UserHandler {
	return &UserHandler{identity: identity}
}

type updateRoleRequest struct {
	Role        string   `json:"role"        validate:"required,max=32"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,required"`
}

// List handles GET /api/v1/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 20, max 100)"
// @Success      200    {object}  pageResponse[domain.User]
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /api/v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	result, err := h.identity.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// UpdateRole handles PUT /api/v1/users/:id/role. Only an admin may call it.
//
// @Summary      Change a user's role and permissions
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id (identity subject)"
// @Param        body  body      updateRoleRequest  true  "New role and permissions"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v1/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.identity.UpdateRole(c.Request().Context(), ports.UpdateRoleInput{
		ActorID:     identity.Subject,
		TargetID:    c.Param("id"),
		Role:        req.Role,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// pageResponse is the list envelope shared by every paged endpoint.
type pageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func toPageResponse[T any](p *ports.Page[T]) pageResponse[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return pageResponse[T]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}
