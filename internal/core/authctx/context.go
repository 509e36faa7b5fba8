// Package authctx carries verified token claims through a request context.
package authctx

import (
	"context"

	"github.com/propertyhub/identity-core/internal/core/domain"
)

type contextKey struct{}

// WithClaims returns a copy of ctx holding claims.
func WithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// Claims returns the claims stored in ctx, if any.
func Claims(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*domain.Claims)
	return claims, ok && claims != nil
}
