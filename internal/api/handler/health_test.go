package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestReadiness(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	cases := []struct {
		deps   map[string]Pinger
		status int
	}{
		{map[string]Pinger{"mongodb": ok}, http.StatusOK},
		{map[string]Pinger{"mongodb": ok, "redis": down}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

		if err := NewReadinessHandler(tc.deps).Readiness(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != tc.status {
			t.Fatalf("expected %d, got %d", tc.status, rec.Code)
		}

		var body readinessResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if len(body.Dependencies) != len(tc.deps) {
			t.Fatalf("expected %d dependencies, got %d", len(tc.deps), len(body.Dependencies))
		}
	}
}
