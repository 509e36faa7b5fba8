package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/propertyhub/identity-core/internal/core/authctx"
	"github.com/propertyhub/identity-core/internal/core/domain"
)

// ctxClaims returns the claims injected by the Authenticate middleware.
// Their absence means the route was mounted without the request gate.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := authctx.Claims(c.Request().Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}
