package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Provider names stored on a user.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
	ProviderGitHub   = "github"
)

// User is an account allowed into the dashboard.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	PasswordHash    string    `json:"-"`
	Provider        string    `json:"provider"`
	ProviderSubject string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserRepository persists users keyed by lower-cased email.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Save inserts the user or updates the row with the same email. Empty
	// display name, password hash and subject values keep what is already
	// stored. A new user without a display name is named after the email.
	Save(ctx context.Context, user *User) (*User, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// InMemoryUserRepository is used in tests and when no database is configured.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewInMemoryUserRepository returns an empty store.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*User)}
}

// GetByEmail implements UserRepository.
func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *u
	return &found, nil
}

// GetByID implements UserRepository.
func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == id {
			found := *u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

// Save implements UserRepository.
func (r *InMemoryUserRepository) Save(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeEmail(user.Email)
	stored := *user
	stored.Email = key
	if existing, ok := r.users[key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		if stored.PasswordHash == "" {
			stored.PasswordHash = existing.PasswordHash
		}
		if stored.ProviderSubject == "" {
			stored.ProviderSubject = existing.ProviderSubject
		}
		if stored.DisplayName == "" {
			stored.DisplayName = existing.DisplayName
		}
	} else if stored.DisplayName == "" {
		stored.DisplayName = key
	}
	r.users[key] = &stored
	out := stored
	return &out, nil
}
