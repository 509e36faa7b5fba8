package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/core/domain"
	"github.com/propertyhub/identity-core/internal/core/ports"
	"github.com/propertyhub/identity-core/internal/pkg/metrics"
)

// AuthService implements registration and login.
type AuthService struct {
	repo     ports.IdentityRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	throttle ports.LoginThrottle
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time

	// decoyHash is compared against when the email is unknown so that both
	// login failure paths cost one bcrypt verification.
	decoyHash string
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithLoginThrottle enables failed-login throttling.
func WithLoginThrottle(t ports.LoginThrottle) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

// WithAuditSink sends auth events to sink.
func WithAuditSink(sink ports.AuditSink) AuthOption {
	return func(s *AuthService) { s.audit = sink }
}

func NewAuthService(
	repo ports.IdentityRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
	opts ...AuthOption,
) (*AuthService, error) {
	decoy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("auth service: decoy hash: %w", err)
	}
	s := &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,

		decoyHash: decoy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates an identity and returns a token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || username == "" || in.Password == "" {
		metrics.RegistrationsTotal.WithLabelValues("malformed").Inc()
		return "", fmt.Errorf("%w: email, username and password are required", domain.ErrMalformedInput)
	}
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("malformed").Inc()
		return "", err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedInput) {
			metrics.RegistrationsTotal.WithLabelValues("malformed").Inc()
			return "", err
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Identity{
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		DisplayName:  domain.DeriveDisplayName(in.FirstName, in.LastName),
		PasswordHash: hash,
		Role:         role,
		TenantID:     normalizeTenant(in.TenantID),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return "", domain.ErrDuplicateIdentity
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: issue token: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.record(domain.EventRegistered, created.ID, email)
	s.log.Info().Str("identity_id", created.ID).Str("role", string(role)).Msg("identity registered")
	return token, nil
}

// Login exchanges an email/password pair for a token. Unknown emails and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("malformed").Inc()
		return "", fmt.Errorf("%w: email and password are required", domain.ErrMalformedInput)
	}

	if !s.allow(ctx, email) {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		s.record(domain.EventLoginThrottled, "", email)
		return "", domain.ErrTooManyAttempts
	}

	identity, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrIdentityNotFound):
		s.hasher.Verify(password, s.decoyHash)
		return "", s.rejectLogin(ctx, "", email)
	case err != nil:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, identity.PasswordHash) {
		return "", s.rejectLogin(ctx, identity.ID, email)
	}

	if s.hasher.NeedsRehash(identity.PasswordHash) {
		s.log.Info().Str("identity_id", identity.ID).Msg("stored password hash below configured cost")
	}

	token, err := s.tokens.Issue(identity)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("login: issue token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.record(domain.EventLoginSucceeded, identity.ID, email)
	return token, nil
}

func (s *AuthService) rejectLogin(ctx context.Context, subjectID, email string) error {
	metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to record login failure")
		}
	}
	s.record(domain.EventLoginFailed, subjectID, email)
	s.log.Debug().Str("email", email).Msg("login rejected")
	return domain.ErrInvalidCredentials
}

// allow fails open when the throttle backend is unavailable.
func (s *AuthService) allow(ctx context.Context, email string) bool {
	if s.throttle == nil {
		return true
	}
	ok, err := s.throttle.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
		return true
	}
	return ok
}

func (s *AuthService) record(kind domain.AuthEventKind, subjectID, email string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuthEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		SubjectID: subjectID,
		Email:     email,
		Timestamp: s.now().UTC(),
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeTenant(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}
