package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// Profile is the identity returned by an OAuth provider.
type Profile struct {
	Subject string
	Email   string
	Name    string
}

// Service implements password and OAuth sign-in over a UserRepository.
type Service struct {
	users   UserRepository
	hasher  *Hasher
	allowed *Allowlist
	logger  *logging.Logger
	now     func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithAllowlist restricts OAuth sign-in to the listed emails.
func WithAllowlist(a *Allowlist) ServiceOption {
	return func(s *Service) { s.allowed = a }
}

// NewService creates an auth service. A nil hasher uses bcrypt's default cost.
// Without WithAllowlist no OAuth account may sign in.
func NewService(users UserRepository, hasher *Hasher, logger *logging.Logger, opts ...ServiceOption) *Service {
	if hasher == nil {
		hasher = NewHasher(0)
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{users: users, hasher: hasher, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignInWithPassword returns the user when email and password match a stored
// account. Every credential mismatch collapses into ErrInvalidCredentials.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertOAuthUser creates or refreshes the account linked to an OAuth profile.
// Emails outside the allowlist get ErrInvalidCredentials and no account.
func (s *Service) UpsertOAuthUser(ctx context.Context, provider string, profile Profile) (*User, error) {
	email := normalizeEmail(profile.Email)
	if email == "" {
		return nil, ErrIncompleteProfile
	}
	if !s.allowed.Allows(email) {
		s.logger.Warn("oauth sign-in refused, email not allowed", "provider", provider)
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.Save(ctx, &User{
		ID:              uuid.NewString(),
		Email:           email,
		DisplayName:     strings.TrimSpace(profile.Name),
		Provider:        provider,
		ProviderSubject: profile.Subject,
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("auth: upsert %s user: %w", provider, err)
	}
	s.logger.Info("oauth user signed in", "provider", provider, "user_id", user.ID)
	return user, nil
}

// EnsurePasswordUser creates or resets a password account. cmd/api uses it to
// seed the administrator.
func (s *Service) EnsurePasswordUser(ctx context.Context, email, name, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.users.Save(ctx, &User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(name),
		PasswordHash: hash,
		Provider:     ProviderPassword,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("auth: ensure password user: %w", err)
	}
	return user, nil
}

// User loads an account by id.
func (s *Service) User(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}
