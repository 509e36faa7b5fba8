package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/propertyhub/identity-core/internal/core/domain"
	"github.com/propertyhub/identity-core/internal/core/ports"
)

// IdentityService reads stored identities on behalf of authenticated callers.
type IdentityService struct {
	repo ports.IdentityRepository
}

func NewIdentityService(repo ports.IdentityRepository) *IdentityService {
	return &IdentityService{repo: repo}
}

// Current returns the identity named by the token subject.
func (s *IdentityService) Current(ctx context.Context, claims *domain.Claims) (*domain.Identity, error) {
	if claims == nil || claims.SubjectID == "" {
		return nil, domain.ErrUnauthenticated
	}
	identity, err := s.repo.FindByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("current identity: %w", err)
	}
	return identity, nil
}
