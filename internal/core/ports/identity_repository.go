package ports

import (
	"context"

	"github.com/propertyhub/identity-core/internal/core/domain"
)

// IdentityRepository is the credential store consumed by the auth core.
// Implementations return domain.ErrIdentityNotFound for missing records and
// domain.ErrDuplicateIdentity when a uniqueness constraint rejects Create.
type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}
