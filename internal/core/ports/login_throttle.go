package ports

import "context"

// LoginThrottle tracks failed sign-in attempts per submitted email.
type LoginThrottle interface {
	// Allow reports whether another attempt is permitted for email.
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
