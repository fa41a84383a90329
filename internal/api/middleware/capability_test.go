package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

type stubPermissions map[string]ports.PermissionsView

func (s stubPermissions) Permissions(_ context.Context, subject string) ports.PermissionsView {
	if v, ok := s[subject]; ok {
		return v
	}
	return ports.PermissionsView{Capabilities: domain.FallbackCapabilities(), Role: domain.RoleUser, Degraded: true}
}

func TestRequireCapability(t *testing.T) {
	src := stubPermissions{
		"admin": {Capabilities: domain.Derive(domain.RoleAdmin, nil), Role: domain.RoleAdmin},
		"prof":  {Capabilities: domain.Derive(domain.RoleProfesor, nil), Role: domain.RoleProfesor},
	}

	tests := []struct {
		name    string
		subject string
		cap     domain.Capability
		want    int
	}{
		{"admin may delete", "admin", domain.CanDelete, http.StatusOK},
		{"profesor may export", "prof", domain.CanExport, http.StatusOK},
		{"profesor may not manage", "prof", domain.CanManage, http.StatusForbidden},
		{"unknown caller may view", "ghost", domain.CanView, http.StatusOK},
		{"unknown caller may not export", "ghost", domain.CanExport, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			SetIdentity(c, domain.Identity{Subject: tt.subject})

			err := RequireCapability(src, tt.cap)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)

			if tt.want == http.StatusOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if rec.Code != http.StatusOK {
					t.Fatalf("expected 200, got %d", rec.Code)
				}
				return
			}
			if code := httpStatus(t, err); code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, code)
			}
		})
	}
}

func TestRequireCapability_WithoutAuth(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	err := RequireCapability(stubPermissions{}, domain.CanView)(func(c echo.Context) error {
		t.Fatalf("next must not be called")
		return nil
	})(c)
	if code := httpStatus(t, err); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
