package identity

import (
	"context"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// CasdoorVerifier validates tokens with the Casdoor SDK using the
// application certificate.
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg CasdoorConfig) *CasdoorVerifier {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorVerifier{client: client}
}

func (v *CasdoorVerifier) Verify(_ context.Context, rawToken string) (domain.Identity, error) {
	if rawToken == "" {
		return domain.Identity{}, unauthenticated("empty token", nil)
	}

	claims, err := v.client.ParseJwtToken(rawToken)
	if err != nil {
		return domain.Identity{}, unauthenticated("invalid token", err)
	}
	if claims.Id == "" {
		return domain.Identity{}, unauthenticated("token has no user id", nil)
	}

	return domain.Identity{
		Subject:     claims.Id,
		Email:       claims.Email,
		FirstName:   claims.FirstName,
		LastName:    claims.LastName,
		DisplayName: claims.DisplayName,
	}, nil
}
