package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/metrics"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/middleware"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// AuthHandler serves the identity bootstrap and permission endpoints.
type AuthHandler struct {
	identity ports.IdentityService
}

func NewAuthHandler(identity ports.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type checkFirstUserResponse struct {
	IsFirstUser bool              `json:"isFirstUser"`
	TotalUsers  int64             `json:"totalUsers"`
	SetupState  domain.SetupState `json:"setupState"`
}

type initializeUserResponse struct {
	User         *domain.User        `json:"user"`
	IsFirstUser  bool                `json:"isFirstUser"`
	Capabilities domain.Capabilities `json:"capabilities"`
}

type setupFirstAdminRequest struct {
	ID    string `json:"id"`
	Email string `json:"email" validate:"omitempty,email"`
	Name  string `json:"name"  validate:"omitempty,max=200"`
}

type setupFirstAdminResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

type permissionsResponse struct {
	domain.Capabilities
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// CheckFirstUser handles GET /api/v1/auth/check-first-user.
//
// @Summary      Report whether the first admin can still be claimed
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  checkFirstUserResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/v1/auth/check-first-user [get]
func (h *AuthHandler) CheckFirstUser(c echo.Context) error {
	if _, err := middleware.Identity(c); err != nil {
		return err
	}

	status, err := h.identity.CheckFirstUser(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, checkFirstUserResponse{
		IsFirstUser: status.IsFirstUser,
		TotalUsers:  status.TotalUsers,
		SetupState:  status.SetupState,
	})
}

// InitializeUser handles POST /api/v1/auth/initialize-user. It is idempotent
// per identity.
//
// @Summary      Resolve the caller into a local user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  initializeUserResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/v1/auth/initialize-user [post]
func (h *AuthHandler) InitializeUser(c echo.Context) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}

	res, err := h.identity.Resolve(c.Request().Context(), identity)
	if err != nil {
		metrics.IdentityResolutionsTotal.WithLabelValues("error").Inc()
		return err
	}
	if res.IsFirstUser {
		metrics.IdentityResolutionsTotal.WithLabelValues("first_admin").Inc()
	} else {
		metrics.IdentityResolutionsTotal.WithLabelValues("resolved").Inc()
	}

	return c.JSON(http.StatusOK, initializeUserResponse{
		User:         res.User,
		IsFirstUser:  res.IsFirstUser,
		Capabilities: res.Capabilities,
	})
}

// SetupFirstAdmin handles POST /api/v1/auth/setup-first-admin.
//
// @Summary      Claim the first admin role
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setupFirstAdminRequest  false  "Optional profile hints; id must match the token subject"
// @Success      200   {object}  setupFirstAdminResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/v1/auth/setup-first-admin [post]
func (h *AuthHandler) SetupFirstAdmin(c echo.Context) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}

	var req setupFirstAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if id := strings.TrimSpace(req.ID); id != "" && id != identity.Subject {
		return domain.NewValidationError("id", "does not match the authenticated identity")
	}
	if identity.Email == "" {
		identity.Email = strings.TrimSpace(req.Email)
	}
	if identity.DisplayName == "" {
		identity.DisplayName = strings.TrimSpace(req.Name)
	}

	user, err := h.identity.SetupFirstAdmin(c.Request().Context(), identity)
	switch {
	case errors.Is(err, domain.ErrNotEligible):
		metrics.BootstrapAttemptsTotal.WithLabelValues("not_eligible").Inc()
		return err
	case err != nil:
		metrics.BootstrapAttemptsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.BootstrapAttemptsTotal.WithLabelValues("claimed").Inc()
	return c.JSON(http.StatusOK, setupFirstAdminResponse{Success: true, User: user})
}

// Permissions handles GET /api/v1/auth/permissions. An authenticated caller
// always gets 200; an unresolvable record yields the view-only fallback.
//
// @Summary      Capabilities of the caller
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  permissionsResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/v1/auth/permissions [get]
func (h *AuthHandler) Permissions(c echo.Context) error {
	identity, err := middleware.Identity(c)
	if err != nil {
		return err
	}

	view := h.identity.Permissions(c.Request().Context(), identity.Subject)
	if view.Degraded {
		metrics.PermissionFallbacksTotal.Inc()
	}
	perms := view.Permissions
	if perms == nil {
		perms = []string{}
	}
	return c.JSON(http.StatusOK, permissionsResponse{
		Capabilities: view.Capabilities,
		Role:         view.Role,
		Permissions:  perms,
	})
}
