package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

const jwtLeeway = 30 * time.Second

// JWTConfig configures verification of provider-signed JWTs. Secret selects
// HS256; PublicKey (PEM) selects RS256 and takes precedence.
type JWTConfig struct {
	Secret    string
	PublicKey string
	Issuer    string
	Audience  string
}

type jwtClaims struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	jwt.RegisteredClaims
}

// JWTVerifier implements ports.IdentityVerifier for self-contained JWTs.
type JWTVerifier struct {
	key    any
	parser *jwt.Parser
}

func NewJWTVerifier(cfg JWTConfig) (*JWTVerifier, error) {
	var (
		key    any
		method string
	)
	switch {
	case cfg.PublicKey != "":
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKey))
		if err != nil {
			return nil, err
		}
		key, method = pub, jwt.SigningMethodRS256.Alg()
	case cfg.Secret != "":
		key, method = []byte(cfg.Secret), jwt.SigningMethodHS256.Alg()
	default:
		return nil, errors.New("identity: jwt verifier needs a secret or a public key")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(jwtLeeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &JWTVerifier{key: key, parser: jwt.NewParser(opts...)}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (domain.Identity, error) {
	if rawToken == "" {
		return domain.Identity{}, unauthenticated("empty token", nil)
	}

	claims := &jwtClaims{}
	_, err := v.parser.ParseWithClaims(rawToken, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return domain.Identity{}, unauthenticated("invalid token", err)
	}
	if claims.Subject == "" {
		return domain.Identity{}, unauthenticated("token has no subject", nil)
	}

	return domain.Identity{
		Subject:     claims.Subject,
		Email:       claims.Email,
		FirstName:   claims.GivenName,
		LastName:    claims.FamilyName,
		DisplayName: claims.Name,
	}, nil
}
