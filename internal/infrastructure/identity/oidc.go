package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

// OIDCVerifier validates ID tokens against a discovered OpenID provider.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the provider at issuerURL. Keys are fetched and
// rotated by the go-oidc remote key set.
func NewOIDCVerifier(ctx context.Context, issuerURL, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("identity: discover oidc provider: %w", err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (domain.Identity, error) {
	if rawToken == "" {
		return domain.Identity{}, unauthenticated("empty token", nil)
	}

	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return domain.Identity{}, unauthenticated("invalid id token", err)
	}

	var claims struct {
		Email      string `json:"email"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return domain.Identity{}, unauthenticated("unreadable claims", err)
	}
	if idToken.Subject == "" {
		return domain.Identity{}, unauthenticated("token has no subject", nil)
	}

	return domain.Identity{
		Subject:     idToken.Subject,
		Email:       claims.Email,
		FirstName:   claims.GivenName,
		LastName:    claims.FamilyName,
		DisplayName: claims.Name,
	}, nil
}
