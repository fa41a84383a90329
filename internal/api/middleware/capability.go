package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/api/metrics"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// PermissionSource resolves the capability vector of a subject.
type PermissionSource interface {
	Permissions(ctx context.Context, subject string) ports.PermissionsView
}

// RequireCapability lets the request through only when the caller's derived
// capabilities include cp. It must run after Auth.
func RequireCapability(src PermissionSource, cp domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := Identity(c)
			if err != nil {
				return err
			}

			view := src.Permissions(c.Request().Context(), identity.Subject)
			if !view.Capabilities.Has(cp) {
				metrics.CapabilityDenialsTotal.WithLabelValues(string(cp)).Inc()
				return echo.NewHTTPError(http.StatusForbidden, "missing capability: "+string(cp))
			}
			return next(c)
		}
	}
}
