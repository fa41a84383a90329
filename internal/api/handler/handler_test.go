package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/middleware"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

type stubIdentityService struct {
	resolveFn     func(ctx context.Context, identity domain.Identity) (*ports.ResolveResult, error)
	checkFn       func(ctx context.Context) (*ports.FirstUserStatus, error)
	setupFn       func(ctx context.Context, identity domain.Identity) (*domain.User, error)
	permissionsFn func(ctx context.Context, subject string) ports.PermissionsView
	updateRoleFn  func(ctx context.Context, in ports.UpdateRoleInput) (*domain.User, error)
	listFn        func(ctx context.Context, page, limit int) (*ports.Page[*domain.User], error)
}

func (s *stubIdentityService) Resolve(ctx context.Context, identity domain.Identity) (*ports.ResolveResult, error) {
	return s.resolveFn(ctx, identity)
}

func (s *stubIdentityService) CheckFirstUser(ctx context.Context) (*ports.FirstUserStatus, error) {
	return s.checkFn(ctx)
}

func (s *stubIdentityService) SetupFirstAdmin(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	return s.setupFn(ctx, identity)
}

func (s *stubIdentityService) Permissions(ctx context.Context, subject string) ports.PermissionsView {
	return s.permissionsFn(ctx, subject)
}

func (s *stubIdentityService) UpdateRole(ctx context.Context, in ports.UpdateRoleInput) (*domain.User, error) {
	return s.updateRoleFn(ctx, in)
}

func (s *stubIdentityService) ListUsers(ctx context.Context, page, limit int) (*ports.Page[*domain.User], error) {
	return s.listFn(ctx, page, limit)
}

// newTestContext builds an echo context with the validator installed and,
// when subject is non-empty, an authenticated identity.
func newTestContext(method, target, body, subject string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if subject != "" {
		middleware.SetIdentity(c, domain.Identity{Subject: subject, Email: subject + "@school.test"})
	}
	return c, rec
}
