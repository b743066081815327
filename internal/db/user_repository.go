package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tickrealm/core/internal/model"
)

// UserRepository backs authentication and character listing.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByLogin retrieves a user by login. Returns nil, nil if not found.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, login, password_hash, name, roles, created_at, last_login_at
		 FROM users WHERE login = $1`, login,
	).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Name, &u.Roles, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user %q: %w", login, err)
	}
	return &u, nil
}

// Create inserts a new user with the given bcrypt password hash.
func (r *UserRepository) Create(ctx context.Context, login, passwordHash, name string) (*model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (login, password_hash, name)
		 VALUES ($1, $2, $3)
		 RETURNING id, login, password_hash, name, roles, created_at, last_login_at`,
		login, passwordHash, name,
	).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Name, &u.Roles, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return nil, fmt.Errorf("creating user %q: %w", login, err)
	}
	return &u, nil
}

// TouchLastLogin stamps last_login_at to now().
func (r *UserRepository) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("touching last login for user %d: %w", userID, err)
	}
	return nil
}
