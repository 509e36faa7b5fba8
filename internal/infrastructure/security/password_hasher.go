// Package security holds the password hasher and the bearer token codec.
package security

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/propertyhub/identity-core/internal/core/domain"
	"github.com/propertyhub/identity-core/internal/pkg/metrics"
)

// maxSecretBytes is the bcrypt input limit.
const maxSecretBytes = 72

// BcryptHasher implements ports.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, clamped to the bcrypt range.
// A zero cost selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the work factor applied to new hashes.
func (h *BcryptHasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt digest of secret.
func (h *BcryptHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("%w: empty secret", domain.ErrMalformedInput)
	}
	if len(secret) > maxSecretBytes {
		return "", fmt.Errorf("%w: secret exceeds %d bytes", domain.ErrMalformedInput, maxSecretBytes)
	}

	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether secret matches hash. Malformed hashes never match.
func (h *BcryptHasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// NeedsRehash reports whether hash was produced with a lower cost than the current one.
func (h *BcryptHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return cost < h.cost
}
