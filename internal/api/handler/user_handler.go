package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/propertyhub/identity-core/internal/core/ports"
)

// UserHandler serves identity lookups for authenticated callers.
type UserHandler struct {
	identities ports.IdentityService
}

func NewUserHandler(identities ports.IdentityService) *UserHandler {
	return &UserHandler{identities: identities}
}

// Me returns the identity behind the bearer token.
//
// @Summary      Current identity
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Identity
// @Failure      401  {object}  response.ErrorResponse
// @Failure      404  {object}  response.ErrorResponse
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	identity, err := h.identities.Current(c.Request().Context(), claims)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, identity)
}
