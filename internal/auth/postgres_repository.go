package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool used by PostgresUserRepository.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresUserRepository stores users in the users table.
type PostgresUserRepository struct {
	db DB
}

// NewPostgresUserRepository initializes a repo backed by a pgx pool.
func NewPostgresUserRepository(db DB) *PostgresUserRepository {
	if db == nil {
		panic("auth: pgx pool required")
	}
	return &PostgresUserRepository{db: db}
}

const selectUser = `
	SELECT id, email, display_name, COALESCE(password_hash, ''), provider, COALESCE(provider_subject, ''), created_at
	FROM users
`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Provider, &u.ProviderSubject, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail implements UserRepository.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, selectUser+"WHERE email = $1", normalizeEmail(email)))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("auth: get user by email: %w", err)
	}
	return u, err
}

// GetByID implements UserRepository.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, selectUser+"WHERE id = $1", id))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("auth: get user by id: %w", err)
	}
	return u, err
}

// Save implements UserRepository.
func (r *PostgresUserRepository) Save(ctx context.Context, user *User) (*User, error) {
	query := `
		INSERT INTO users (id, email, display_name, password_hash, provider, provider_subject, created_at)
		VALUES ($1, $2, COALESCE(NULLIF($3, ''), $2), NULLIF($4, ''), $5, NULLIF($6, ''), $7)
		ON CONFLICT (email) DO UPDATE SET
			display_name = COALESCE(NULLIF($3, ''), users.display_name),
			password_hash = COALESCE(EXCLUDED.password_hash, users.password_hash),
			provider = EXCLUDED.provider,
			provider_subject = COALESCE(EXCLUDED.provider_subject, users.provider_subject)
		RETURNING id, email, display_name, COALESCE(password_hash, ''), provider, COALESCE(provider_subject, ''), created_at
	`
	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID,
		normalizeEmail(user.Email),
		user.DisplayName,
		user.PasswordHash,
		user.Provider,
		user.ProviderSubject,
		user.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("auth: save user: %w", err)
	}
	return saved, nil
}
