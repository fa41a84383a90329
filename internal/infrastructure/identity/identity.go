// Package identity verifies bearer tokens issued by the external identity
// provider and turns them into domain identities.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/pkg/config"
)

// New builds the verifier selected by cfg.Provider.
func New(ctx context.Context, cfg config.AuthConfig) (ports.IdentityVerifier, error) {
	switch strings.ToLower(cfg.Provider) {
	case config.ProviderJWT:
		return NewJWTVerifier(JWTConfig{
			Secret:    cfg.JWTSecret,
			PublicKey: cfg.JWTPublicKey,
			Issuer:    cfg.JWTIssuer,
			Audience:  cfg.JWTAudience,
		})
	case config.ProviderOIDC:
		return NewOIDCVerifier(ctx, cfg.OIDCIssuerURL, cfg.OIDCClientID)
	case config.ProviderCasdoor:
		return NewCasdoorVerifier(CasdoorConfig{
			Endpoint:     cfg.CasdoorEndpoint,
			ClientID:     cfg.CasdoorClientID,
			ClientSecret: cfg.CasdoorClientSecret,
			Certificate:  cfg.CasdoorCertificate,
			Organization: cfg.CasdoorOrganization,
			Application:  cfg.CasdoorApplication,
		}), nil
	default:
		return nil, fmt.Errorf("identity: unknown provider %q", cfg.Provider)
	}
}

// unauthenticated wraps a provider failure so callers can match it with
// errors.Is(err, domain.ErrUnauthenticated).
func unauthenticated(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnauthenticated, reason)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUnauthenticated, reason, err)
}
