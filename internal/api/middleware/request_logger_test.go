package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/core/domain"
)

func TestRequestLogger_WritesEntryWithoutAuthorization(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/secure", func(c echo.Context) error { return domain.ErrUnauthenticated })
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = c.NoContent(http.StatusUnauthorized)
	}

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer top-secret-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if strings.Contains(buf.String(), "top-secret-token") {
		t.Fatalf("token leaked into log: %s", buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, buf.String())
	}
	if entry["path"] != "/secure" || entry["status"] != float64(http.StatusUnauthorized) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
