package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/core/authctx"
	"github.com/propertyhub/identity-core/internal/core/domain"
	"github.com/propertyhub/identity-core/internal/core/ports"
	"github.com/propertyhub/identity-core/internal/pkg/metrics"
)

// ClaimsKey is the echo context key holding *domain.Claims after Authenticate.
const ClaimsKey = "claims"

// Authenticate validates the bearer token and injects its claims into the
// request context. Every failure is reported as domain.ErrUnauthenticated.
func Authenticate(verifier ports.TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrUnauthenticated
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues(verificationResult(err)).Inc()
				log.Debug().Err(err).Str("path", c.Path()).Msg("bearer token rejected")
				return domain.ErrUnauthenticated
			}

			metrics.TokenVerificationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
			c.Set(ClaimsKey, claims)
			req := c.Request()
			c.SetRequest(req.WithContext(authctx.WithClaims(req.Context(), claims)))
			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
