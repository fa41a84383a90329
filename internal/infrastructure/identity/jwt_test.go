package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/pkg/config"
)

const testSecret = "test-secret"

func signHS(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":         "user-123",
		"email":       "ada@school.test",
		"name":        "Ada Lovelace",
		"given_name":  "Ada",
		"family_name": "Lovelace",
		"iss":         "https://id.school.test",
		"aud":         "school-api",
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
}

func TestJWTVerifier_Valid(t *testing.T) {
	v, err := NewJWTVerifier(JWTConfig{Secret: testSecret, Issuer: "https://id.school.test", Audience: "school-api"})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	id, err := v.Verify(context.Background(), signHS(t, testSecret, validClaims()))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	want := domain.Identity{
		Subject:     "user-123",
		Email:       "ada@school.test",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DisplayName: "Ada Lovelace",
	}
	if id != want {
		t.Fatalf("identity = %+v, want %+v", id, want)
	}
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v, err := NewJWTVerifier(JWTConfig{Secret: testSecret, Issuer: "https://id.school.test"})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	with := func(k string, val any) jwt.MapClaims {
		c := validClaims()
		if val == nil {
			delete(c, k)
		} else {
			c[k] = val
		}
		return c
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", signHS(t, "other", validClaims())},
		{"expired", signHS(t, testSecret, with("exp", time.Now().Add(-time.Hour).Unix()))},
		{"no expiry", signHS(t, testSecret, with("exp", nil))},
		{"no subject", signHS(t, testSecret, with("sub", nil))},
		{"wrong issuer", signHS(t, testSecret, with("iss", "https://evil.test"))},
		{"alg none", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestJWTVerifier_RS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewJWTVerifier(JWTConfig{PublicKey: string(pubPEM), Secret: testSecret})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims()).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	id, err := v.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Subject != "user-123" {
		t.Fatalf("subject = %q", id.Subject)
	}

	// HS256 with the shared secret is refused once a public key is configured.
	if _, err := v.Verify(context.Background(), signHS(t, testSecret, validClaims())); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected HS256 rejection, got %v", err)
	}
}

func TestNewJWTVerifier_NeedsKey(t *testing.T) {
	if _, err := NewJWTVerifier(JWTConfig{}); err == nil {
		t.Fatal("expected error without key material")
	}
	if _, err := NewJWTVerifier(JWTConfig{PublicKey: "not pem"}); err == nil {
		t.Fatal("expected error for invalid PEM")
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	v, err := New(context.Background(), config.AuthConfig{Provider: "JWT", JWTSecret: testSecret})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := v.(*JWTVerifier); !ok {
		t.Fatalf("expected *JWTVerifier, got %T", v)
	}

	if _, err := New(context.Background(), config.AuthConfig{Provider: "ldap"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
