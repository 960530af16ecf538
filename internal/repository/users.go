package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Users persists user accounts.
type Users struct {
	pool *pgxpool.Pool
}

// NewUsers creates a Users repository.
func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// Create inserts a new user and returns it.
// Returns ErrDuplicate when the username or email is already taken.
func (r *Users) Create(ctx context.Context, username, email, passwordHash string) (*User, error) {
	const q = `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, password_hash, created_at`

	var u User
	err := r.pool.QueryRow(ctx, q, uuid.New(), username, email, passwordHash).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

// GetByID returns a user by primary key.
func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE id = $1`

	var u User
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}

// GetByUsername returns a user by username.
func (r *Users) GetByUsername(ctx context.Context, username string) (*User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = $1`

	var u User
	err := r.pool.QueryRow(ctx, q, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &u, nil
}
