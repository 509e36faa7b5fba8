package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/propertyhub/identity-core/internal/core/domain"
)

// DefaultTokenTTL is applied when TokenConfig.TTL is not positive.
const DefaultTokenTTL = 24 * time.Hour

// TokenConfig is the process-wide signing configuration. Build it once at start-up.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// tokenClaims is the signed JWT payload.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role     string  `json:"role"`
	Username string  `json:"username"`
	TenantID *string `json:"tid,omitempty"`
}

// JWTCodec issues and verifies HS256 bearer tokens.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// CodecOption customises a JWTCodec.
type CodecOption func(*JWTCodec)

// WithClock overrides the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec builds a codec from cfg. The secret is copied so later mutation of cfg has no effect.
func NewJWTCodec(cfg TokenConfig, opts ...CodecOption) (*JWTCodec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token codec: empty signing secret")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	c := &JWTCodec{
		secret: append([]byte(nil), cfg.Secret...),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime given to new tokens.
func (c *JWTCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for identity.
func (c *JWTCodec) Issue(identity *domain.Identity) (string, error) {
	if identity == nil || identity.ID == "" {
		return "", fmt.Errorf("%w: identity without id", domain.ErrMalformedInput)
	}

	now := c.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			Issuer:    c.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Role:     string(identity.Role),
		Username: identity.Username,
		TenantID: identity.TenantID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
func (c *JWTCodec) Verify(token string) (*domain.Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, c.keyFunc, c.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) && onlySignatureUndecodable(token) {
			return nil, domain.ErrTokenInvalidSignature
		}
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalidSignature
	}

	role, err := domain.ParseRole(tc.Role)
	if err != nil || tc.Subject == "" {
		return nil, domain.ErrTokenMalformed
	}

	claims := &domain.Claims{
		SubjectID: tc.Subject,
		Role:      role,
		Username:  tc.Username,
		TenantID:  tc.TenantID,
		TokenID:   tc.ID,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}

func (c *JWTCodec) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		// Rejects signatures whose trailing padding bits were altered.
		jwt.WithStrictDecoding(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	return opts
}

// onlySignatureUndecodable reports whether header and payload are canonical
// base64url but the signature segment is not.
func onlySignatureUndecodable(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[2] == "" {
		return false
	}
	enc := base64.RawURLEncoding.Strict()
	for _, seg := range parts[:2] {
		if _, err := enc.DecodeString(seg); err != nil {
			return false
		}
	}
	_, err := enc.DecodeString(parts[2])
	return err != nil
}

func (c *JWTCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return c.secret, nil
}

// classify maps jwt parser errors onto the codec's error taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return domain.ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return domain.ErrTokenMalformed
	}
}
