package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bookly/event-booking/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation default", domain.NewValidationError(), http.StatusBadRequest, "All fields are required"},
		{"validation detail", fmt.Errorf("create: %w", domain.NewValidationError("price must be greater than 0")), http.StatusBadRequest, "price must be greater than 0"},
		{"duplicate email", fmt.Errorf("register: %w", domain.ErrDuplicateEmail), http.StatusBadRequest, "Email already registered"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusBadRequest, "Invalid email or password"},
		{"duplicate booking", fmt.Errorf("book: %w", domain.ErrDuplicateBooking), http.StatusBadRequest, "You already booked this event"},
		{"unauthenticated", fmt.Errorf("%w: token is expired", domain.ErrUnauthenticated), http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "Access denied"},
		{"not found", domain.ErrEventNotFound, http.StatusNotFound, "Event not found"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests"), http.StatusTooManyRequests, "Too many requests"},
		{"route not found", echo.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["message"] != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, body["message"])
			}
		})
	}
}

func TestHTTPErrorHandler_LogsUnexpectedWithoutLeaking(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/events", nil), rec)

	NewHTTPErrorHandler(zerolog.New(&buf))(errors.New("dial tcp 10.0.0.5:5432: refused"), c)

	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "10.0.0.5") || !strings.Contains(buf.String(), "unhandled error") {
		t.Fatalf("expected the cause to be logged, got %q", buf.String())
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was modified: %d %q", rec.Code, rec.Body.String())
	}
}
