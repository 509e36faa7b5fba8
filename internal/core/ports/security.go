package ports

import "github.com/propertyhub/identity-core/internal/core/domain"

// PasswordHasher hashes secrets and verifies them in constant time.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
	NeedsRehash(hash string) bool
}

// TokenIssuer signs claims for an identity.
type TokenIssuer interface {
	Issue(identity *domain.Identity) (string, error)
}

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*domain.Claims, error)
}
