package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/core/authctx"
	"github.com/propertyhub/identity-core/internal/core/domain"
	"github.com/propertyhub/identity-core/internal/pkg/metrics"
)

// RBAC enforces role-based access control. It must run after Authenticate.
func RBAC(log zerolog.Logger, allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := domain.NewRoleSet(allowedRoles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, _ := authctx.Claims(c.Request().Context())
			decision := domain.Authorize(claims, allowed)
			if !decision.Allowed {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("forbidden").Inc()
				ev := log.Debug().Str("path", c.Path()).Str("reason", decision.Reason)
				if claims != nil {
					ev = ev.Str("subject_id", claims.SubjectID).Str("role", string(claims.Role))
				}
				ev.Msg("request forbidden")
				return domain.ErrForbidden
			}
			metrics.AuthorizationDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}
