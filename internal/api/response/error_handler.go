// Package response renders errors for the HTTP layer.
package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/core/domain"
)

// Stable machine-readable reasons returned in the "code" field.
const (
	CodeMalformedInput     = "MALFORMED_INPUT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateIdentity  = "DUPLICATE_IDENTITY"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS"
	CodeInternal           = "INTERNAL"
)

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes and reason codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<CODE>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := Resolve(err)
		if status == http.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

// Resolve maps err to a status code and client-safe body.
func Resolve(err error) (int, ErrorResponse) {
	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeMalformedInput}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials", Code: CodeInvalidCredentials}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: CodeUnauthenticated}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "forbidden: insufficient role", Code: CodeForbidden}
	case errors.Is(err, domain.ErrIdentityNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "identity not found", Code: CodeNotFound}
	case errors.Is(err, domain.ErrDuplicateIdentity):
		return http.StatusConflict, ErrorResponse{Error: "identity already exists", Code: CodeDuplicateIdentity}
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, ErrorResponse{Error: "too many failed login attempts", Code: CodeTooManyAttempts}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorResponse{Error: fmt.Sprintf("%v", he.Message), Code: codeForStatus(he.Code)}
	}

	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: CodeInternal}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeMalformedInput
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeTooManyAttempts
	default:
		return CodeInternal
	}
}
