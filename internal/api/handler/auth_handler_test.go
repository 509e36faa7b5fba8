package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/api/response"
	"github.com/propertyhub/identity-core/internal/core/authctx"
	"github.com/propertyhub/identity-core/internal/core/domain"
	"github.com/propertyhub/identity-core/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (string, error)
	loginFn    func(ctx context.Context, email, password string) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return s.loginFn(ctx, email, password)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(zerolog.Nop())
	return e
}

func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) {
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return body
}

const validSignup = `{"email":"a@example.com","username":"alice","firstName":"Ann","lastName":"Lee","password":"secret123","role":"CLIENT","tenantId":"t-1"}`

func TestAuthHandler_Signup_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
			if in.Username != "alice" || in.Role != "CLIENT" || in.FirstName != "Ann" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.TenantID == nil || *in.TenantID != "t-1" {
				t.Fatalf("tenant not forwarded: %v", in.TenantID)
			}
			return "token123", nil
		},
	}
	c, rec := postJSON(e, "/auth/signup", validSignup)

	serve(e, c, NewAuthHandler(stub).Signup)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Signup_Duplicate(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
			return "", domain.ErrDuplicateIdentity
		},
	}
	c, rec := postJSON(e, "/auth/signup", validSignup)

	serve(e, c, NewAuthHandler(stub).Signup)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != response.CodeDuplicateIdentity {
		t.Fatalf("unexpected code: %s", body.Code)
	}
}

func TestAuthHandler_Signup_InvalidPayload(t *testing.T) {
	bodies := map[string]string{
		"not json":       "not-json",
		"missing fields": `{"username":"bob"}`,
		"short password": `{"email":"a@example.com","username":"a","password":"short","role":"CLIENT"}`,
		"unknown role":   `{"email":"a@example.com","username":"a","password":"secret123","role":"OWNER"}`,
		"bad email":      `{"email":"nope","username":"a","password":"secret123","role":"CLIENT"}`,
	}

	for name, body := range bodies {
		e := newEcho()
		stub := &stubAuthService{
			registerFn: func(ctx context.Context, in ports.RegisterInput) (string, error) {
				t.Fatalf("%s: should not be called", name)
				return "", nil
			},
		}
		c, rec := postJSON(e, "/auth/signup", body)

		serve(e, c, NewAuthHandler(stub).Signup)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
		if got := decodeError(t, rec); got.Code != response.CodeMalformedInput {
			t.Fatalf("%s: unexpected code: %s", name, got.Code)
		}
	}
}

func TestAuthHandler_Signin_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", nil
		},
	}
	c, rec := postJSON(e, "/auth/signin", `{"email":"alice@example.com","password":"secret"}`)

	serve(e, c, NewAuthHandler(stub).Signin)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["message"] != "Authentication successful" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Signin_Failures(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, response.CodeInvalidCredentials},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests, response.CodeTooManyAttempts},
		{errors.New("socket closed"), http.StatusInternalServerError, response.CodeInternal},
	}

	for _, tc := range cases {
		e := newEcho()
		stub := &stubAuthService{
			loginFn: func(ctx context.Context, email, password string) (string, error) {
				return "", tc.err
			},
		}
		c, rec := postJSON(e, "/auth/signin", `{"email":"alice@example.com","password":"bad"}`)

		serve(e, c, NewAuthHandler(stub).Signin)

		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		if body := decodeError(t, rec); body.Code != tc.code {
			t.Fatalf("%v: expected code %s, got %s", tc.err, tc.code, body.Code)
		}
	}
}

func TestAuthHandler_Signin_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, error) {
			t.Fatalf("should not be called")
			return "", nil
		},
	}
	c, rec := postJSON(e, "/auth/signin", "{")

	serve(e, c, NewAuthHandler(stub).Signin)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

type stubIdentityService struct {
	identity *domain.Identity
	err      error
}

func (s *stubIdentityService) Current(_ context.Context, claims *domain.Claims) (*domain.Identity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func TestUserHandler_Me(t *testing.T) {
	e := newEcho()
	tenant := "t-1"
	stub := &stubIdentityService{identity: &domain.Identity{
		ID:           "u1",
		Username:     "alice",
		FirstName:    "Ann",
		LastName:     "Lee",
		DisplayName:  "Ann Lee",
		PasswordHash: "$2a$10$secret",
		Role:         domain.RoleClient,
		TenantID:     &tenant,
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req = req.WithContext(authctx.WithClaims(req.Context(), &domain.Claims{SubjectID: "u1", Role: domain.RoleClient}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	serve(e, c, NewUserHandler(stub).Me)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	want := map[string]any{"firstName": "Ann", "lastName": "Lee", "displayName": "Ann Lee", "tenantId": "t-1"}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("expected %s=%v, got %v (body %s)", k, v, body[k], rec.Body.String())
		}
	}
	for _, k := range []string{"createdAt", "updatedAt"} {
		if _, ok := body[k]; !ok {
			t.Fatalf("missing %s in %s", k, rec.Body.String())
		}
	}
}

func TestUserHandler_Me_WithoutClaims(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), rec)

	serve(e, c, NewUserHandler(&stubIdentityService{}).Me)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
