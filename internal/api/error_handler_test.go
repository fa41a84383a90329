package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", domain.NewValidationError("name", "is required"), http.StatusBadRequest, "validation failed"},
		{"echo error", echo.NewHTTPError(http.StatusUnauthorized, "invalid token"), http.StatusUnauthorized, "invalid token"},
		{"unauthenticated", fmt.Errorf("%w: expired: provider detail", domain.ErrUnauthenticated), http.StatusUnauthorized, domain.ErrUnauthenticated.Error()},
		{"bad signature", domain.ErrInvalidSignature, http.StatusUnauthorized, domain.ErrInvalidSignature.Error()},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"not eligible", domain.ErrNotEligible, http.StatusConflict, domain.ErrNotEligible.Error()},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"not found", fmt.Errorf("get course: %w", domain.ErrNotFound), http.StatusNotFound, "record not found"},
		{"dependents", domain.ErrHasDependents, http.StatusConflict, domain.ErrHasDependents.Error()},
		{"duplicate", domain.ErrDuplicate, http.StatusConflict, domain.ErrDuplicate.Error()},
		{"storage", fmt.Errorf("%w: connection refused", domain.ErrStorage), http.StatusInternalServerError, "storage failure"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/things", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	verr := domain.NewValidationError("name", "is required")
	verr.Add("email", "must be a valid email")

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/v1/institutions", nil), rec)
	NewHTTPErrorHandler(zerolog.Nop())(verr, c)

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Fields) != 2 || body.Fields[1].Field != "email" {
		t.Fatalf("unexpected fields: %+v", body.Fields)
	}
}

func TestHTTPErrorHandler_Head(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/api/v1/things", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrNotFound, c)

	if rec.Code != http.StatusNotFound || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 404, got %d %q", rec.Code, rec.Body.String())
	}
}
