package ports

import (
	"context"

	"github.com/propertyhub/identity-core/internal/core/domain"
)

// RegisterInput carries the fields needed to create an identity.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
	Role      string
	TenantID  *string
}

// AuthService registers identities and exchanges credentials for bearer tokens.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// IdentityService resolves stored identities for authenticated callers.
type IdentityService interface {
	Current(ctx context.Context, claims *domain.Claims) (*domain.Identity, error)
}
