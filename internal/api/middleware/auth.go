package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

const identityKey = "identity"

// Auth verifies the bearer token with the identity provider and injects the
// resulting identity into the context.
func Auth(verifier ports.IdentityVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			identity, err := verifier.Verify(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// SetIdentity stores a verified identity on the request context.
func SetIdentity(c echo.Context, identity domain.Identity) {
	c.Set(identityKey, identity)
}

// Identity returns the verified identity injected by Auth. A missing identity
// means the route was mounted without Auth and is reported as 401.
func Identity(c echo.Context) (domain.Identity, error) {
	identity, ok := c.Get(identityKey).(domain.Identity)
	if !ok || identity.Subject == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity, nil
}
