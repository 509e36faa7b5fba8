package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/core/domain"
	"github.com/propertyhub/identity-core/internal/core/ports"
)

// Protect returns the request gate stages in their fixed order: Authenticate
// first, then RBAC when roles are given. With no roles any authenticated
// identity passes.
func Protect(verifier ports.TokenVerifier, log zerolog.Logger, roles ...domain.Role) []echo.MiddlewareFunc {
	stages := []echo.MiddlewareFunc{Authenticate(verifier, log)}
	if len(roles) > 0 {
		stages = append(stages, RBAC(log, roles...))
	}
	return stages
}
