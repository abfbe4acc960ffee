package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bookly/event-booking/internal/core/service"
	"github.com/bookly/event-booking/internal/infrastructure/db/memory"
)

const routerSecret = "router-test-secret"

type testServer struct {
	e      *echo.Echo
	tokens *service.TokenManager
	auth   *service.AuthService
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	store := memory.NewStore()
	tokens := service.NewTokenManager(routerSecret, time.Hour)
	auth := service.NewAuthService(store.Users(), tokens, service.AuthOptions{AllowAdminSignup: true}, zerolog.Nop())
	events := service.NewEventService(store.Events(), store.Bookings(), nil, zerolog.Nop())

	reg := prometheus.NewRegistry()
	e := NewRouter(Deps{
		Auth:                   auth,
		Events:                 events,
		Tokens:                 tokens,
		Log:                    zerolog.Nop(),
		AuthRateLimitPerMinute: rateLimit,
		Registerer:             reg,
		Gatherer:               reg,
	})
	return &testServer{e: e, tokens: tokens, auth: auth}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var obj map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &obj)
	return rec, obj
}

func (s *testServer) register(t *testing.T, name, email, password, role string) {
	t.Helper()
	body := `{"name":"` + name + `","email":"` + email + `","password":"` + password + `","role":"` + role + `"}`
	rec, obj := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: %d %v", email, rec.Code, obj)
	}
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec, obj := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %v", email, rec.Code, obj)
	}
	token, _ := obj["token"].(string)
	return token
}

func TestRouter_RegisterLoginAndMissingEvent(t *testing.T) {
	s := newTestServer(t, 0)

	s.register(t, "A", "a@x.com", "p1", "user")

	rec, obj := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"p1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %v", rec.Code, obj)
	}
	if obj["message"] != "Login successful" || obj["role"] != "user" {
		t.Fatalf("unexpected login body %v", obj)
	}
	token, _ := obj["token"].(string)

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return []byte(routerSecret), nil }); err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["email"] != "a@x.com" || claims["role"] != "user" || claims["id"] != float64(1) {
		t.Fatalf("unexpected claims %v", claims)
	}

	rec, obj = s.do(t, http.MethodGet, "/api/events/999", token, "")
	if rec.Code != http.StatusNotFound || obj["message"] != "Event not found" {
		t.Fatalf("expected 404, got %d %v", rec.Code, obj)
	}
}

func TestRouter_RegisterTwiceIsRejected(t *testing.T) {
	s := newTestServer(t, 0)
	s.register(t, "A", "a@x.com", "p1", "user")

	rec, obj := s.do(t, http.MethodPost, "/api/auth/register", "", `{"name":"B","email":"a@x.com","password":"p2","role":"user"}`)
	if rec.Code != http.StatusBadRequest || obj["message"] != "Email already registered" {
		t.Fatalf("expected duplicate email 400, got %d %v", rec.Code, obj)
	}

	for _, body := range []string{
		`{"name":"B","email":"b@x.com"}`,
		`{"name":"","email":"not-an-email","password":"p2","role":"user"}`,
	} {
		rec, obj = s.do(t, http.MethodPost, "/api/auth/register", "", body)
		if rec.Code != http.StatusBadRequest || obj["message"] != "All fields are required" {
			t.Fatalf("%s: expected missing fields 400, got %d %v", body, rec.Code, obj)
		}
	}
}

func TestRouter_LoginFailuresLookTheSame(t *testing.T) {
	s := newTestServer(t, 0)
	s.register(t, "A", "a@x.com", "p1", "user")

	wrongPass, _ := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"a@x.com","password":"nope"}`)
	unknown, _ := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"ghost@x.com","password":"p1"}`)

	if wrongPass.Code != http.StatusBadRequest || unknown.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for both, got %d and %d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestRouter_CreateEventRequiresAdmin(t *testing.T) {
	s := newTestServer(t, 0)
	s.register(t, "Admin", "admin@x.com", "pw", "admin")
	s.register(t, "User", "user@x.com", "pw", "user")
	adminToken := s.login(t, "admin@x.com", "pw")
	userToken := s.login(t, "user@x.com", "pw")

	late := `{"title":"Late","date":"2026-12-01T20:00:00Z","description":"d","price":20}`
	early := `{"title":"Early","date":"2026-06-01","description":"d","price":10.5}`

	rec, _ := s.do(t, http.MethodPost, "/api/events", "", late)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodPost, "/api/events", "garbage", late)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}
	rec, obj := s.do(t, http.MethodPost, "/api/events", userToken, late)
	if rec.Code != http.StatusForbidden || obj["message"] != "Access denied" {
		t.Fatalf("non-admin: expected 403, got %d %v", rec.Code, obj)
	}

	for _, body := range []string{late, early} {
		rec, obj = s.do(t, http.MethodPost, "/api/events", adminToken, body)
		if rec.Code != http.StatusOK || obj["message"] != "Event created successfully" {
			t.Fatalf("admin create: %d %v", rec.Code, obj)
		}
	}

	rec, obj = s.do(t, http.MethodPost, "/api/events", adminToken, `{"title":"Free","date":"2026-06-01","description":"d","price":0}`)
	if rec.Code != http.StatusBadRequest || obj["message"] != "price must be greater than 0" {
		t.Fatalf("zero price: expected 400, got %d %v", rec.Code, obj)
	}

	rec, _ = s.do(t, http.MethodGet, "/api/events", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("list json: %v", err)
	}
	if len(list) != 2 || list[0]["title"] != "Early" || list[1]["title"] != "Late" {
		t.Fatalf("expected events ordered by date, got %v", list)
	}
	if list[0]["date"] != "2026-06-01T00:00:00Z" {
		t.Fatalf("date should render as RFC 3339, got %v", list[0]["date"])
	}
}

func TestRouter_ListEmpty(t *testing.T) {
	s := newTestServer(t, 0)
	rec, _ := s.do(t, http.MethodGet, "/api/events", "", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected 200 [], got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_BookOnce(t *testing.T) {
	s := newTestServer(t, 0)
	s.register(t, "Admin", "admin@x.com", "pw", "admin")
	s.register(t, "User", "user@x.com", "pw", "user")
	adminToken := s.login(t, "admin@x.com", "pw")
	userToken := s.login(t, "user@x.com", "pw")

	s.do(t, http.MethodPost, "/api/events", adminToken, `{"title":"Show","date":"2026-06-01","description":"d","price":5}`)

	rec, _ := s.do(t, http.MethodPost, "/api/events/1/book", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("book without token: expected 401, got %d", rec.Code)
	}

	rec, obj := s.do(t, http.MethodPost, "/api/events/1/book", userToken, "")
	if rec.Code != http.StatusOK || obj["message"] != "Booking confirmed successfully" {
		t.Fatalf("first booking: %d %v", rec.Code, obj)
	}
	rec, obj = s.do(t, http.MethodPost, "/api/events/1/book", userToken, "")
	if rec.Code != http.StatusBadRequest || obj["message"] != "You already booked this event" {
		t.Fatalf("second booking: %d %v", rec.Code, obj)
	}
	rec, _ = s.do(t, http.MethodPost, "/api/events/1/book", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("another user may book the same event, got %d", rec.Code)
	}
	rec, obj = s.do(t, http.MethodPost, "/api/events/77/book", userToken, "")
	if rec.Code != http.StatusNotFound || obj["message"] != "Event not found" {
		t.Fatalf("unknown event: %d %v", rec.Code, obj)
	}
}

func TestRouter_ExpiredTokenIsRejected(t *testing.T) {
	s := newTestServer(t, 0)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":    1,
		"email": "a@x.com",
		"role":  "admin",
		"iat":   time.Now().Add(-2 * time.Hour).Unix(),
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte(routerSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	rec, obj := s.do(t, http.MethodGet, "/api/events/1", signed, "")
	if rec.Code != http.StatusUnauthorized || obj["message"] != "Unauthorized" {
		t.Fatalf("expected 401, got %d %v", rec.Code, obj)
	}
}

func TestRouter_AuthRateLimit(t *testing.T) {
	s := newTestServer(t, 2)
	body := `{"email":"a@x.com","password":"p1"}`

	for i := 0; i < 2; i++ {
		rec, _ := s.do(t, http.MethodPost, "/api/auth/login", "", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: expected 400, got %d", i, rec.Code)
		}
	}
	rec, obj := s.do(t, http.MethodPost, "/api/auth/login", "", body)
	if rec.Code != http.StatusTooManyRequests || obj["message"] != "Too many requests" {
		t.Fatalf("expected 429, got %d %v", rec.Code, obj)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	rec, _ = s.do(t, http.MethodGet, "/api/events", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("event routes are not throttled, got %d", rec.Code)
	}
}

func TestRouter_AuthRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	s := newTestServer(t, 2)
	body := `{"email":"a@x.com","password":"p1"}`

	limited := 0
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderXForwardedFor, "198.51.100."+strconv.Itoa(i+1))
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 8 {
		t.Fatalf("expected 8 of 10 spoofed requests throttled, got %d", limited)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t, 0)

	rec, _ := s.do(t, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	rec, _ = s.do(t, http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: %d", rec.Code)
	}

	s.do(t, http.MethodGet, "/api/events", "", "")
	rec, _ = s.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics: %d %q", rec.Code, rec.Body.String())
	}

	rec, _ = s.do(t, http.MethodGet, "/swagger/doc.json", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/api/events/{id}/book") {
		t.Fatalf("swagger: %d", rec.Code)
	}
}

func TestRouter_CORS(t *testing.T) {
	s := newTestServer(t, 0)
	req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight: expected 204, got %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderAccessControlAllowOrigin) == "" {
		t.Fatalf("expected Access-Control-Allow-Origin header")
	}
}

func TestRouter_BootstrapAdminCanCreateEvents(t *testing.T) {
	s := newTestServer(t, 0)
	created, err := s.auth.EnsureAdmin(context.Background(), "", "root@x.com", "rootpw")
	if err != nil || !created {
		t.Fatalf("ensure admin: %v %v", created, err)
	}
	token := s.login(t, "root@x.com", "rootpw")

	rec, _ := s.do(t, http.MethodPost, "/api/events", token, `{"title":"T","date":"2026-01-01","description":"d","price":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("bootstrap admin create: %d", rec.Code)
	}
}
