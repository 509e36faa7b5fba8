package domain

import "errors"

var (
	ErrDuplicateIdentity  = errors.New("identity already exists")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrMalformedInput     = errors.New("malformed input")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// Token verification failures. Callers outside the codec collapse these into ErrUnauthenticated.
var (
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenMalformed        = errors.New("token is malformed")
)
