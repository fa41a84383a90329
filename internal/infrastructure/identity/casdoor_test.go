package identity

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

func casdoorVerifierFor(t *testing.T, pub *rsa.PublicKey) *CasdoorVerifier {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	return NewCasdoorVerifier(CasdoorConfig{
		Endpoint:     "https://door.school.test",
		ClientID:     "client",
		ClientSecret: "secret",
		Certificate:  string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})),
		Organization: "escuela",
		Application:  "gestion",
	})
}

func casdoorClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"owner":       "escuela",
		"name":        "lmartinez",
		"id":          "b1a6c0de-0000-4000-8000-000000000001",
		"email":       "lucia@school.test",
		"firstName":   "Lucia",
		"lastName":    "Martinez",
		"displayName": "Lucia Martinez",
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
}

func signCasdoor(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestCasdoorVerifier_MapsClaims(t *testing.T) {
	key := newRSAKey(t)
	v := casdoorVerifierFor(t, &key.PublicKey)

	id, err := v.Verify(context.Background(), signCasdoor(t, key, casdoorClaims()))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	want := domain.Identity{
		Subject:     "b1a6c0de-0000-4000-8000-000000000001",
		Email:       "lucia@school.test",
		FirstName:   "Lucia",
		LastName:    "Martinez",
		DisplayName: "Lucia Martinez",
	}
	if id != want {
		t.Fatalf("identity = %+v, want %+v", id, want)
	}
}

func TestCasdoorVerifier_Rejects(t *testing.T) {
	key := newRSAKey(t)
	v := casdoorVerifierFor(t, &key.PublicKey)
	other := newRSAKey(t)

	tests := []struct {
		name  string
		token func() string
	}{
		{"empty", func() string { return "" }},
		{"garbage", func() string { return "a.b.c" }},
		{"foreign key", func() string { return signCasdoor(t, other, casdoorClaims()) }},
		{"hmac signed", func() string { return signHS(t, "shared", casdoorClaims()) }},
		{"expired", func() string {
			c := casdoorClaims()
			c["exp"] = time.Now().Add(-time.Hour).Unix()
			return signCasdoor(t, key, c)
		}},
		{"no user id", func() string {
			c := casdoorClaims()
			delete(c, "id")
			return signCasdoor(t, key, c)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token())
			if !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}
