// Package repository persists Wanderlust entities in PostgreSQL and
// adapts pgx errors into domain errors.
package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")

	// ErrDuplicate is returned when a unique constraint is violated,
	// e.g. registering a username that is already taken.
	ErrDuplicate = errors.New("repository: duplicate")
)

// User is a registered account.
type User struct {
	CreatedAt    time.Time
	Username     string
	Email        string
	PasswordHash string
	ID           uuid.UUID
}

// Listing is a property listing owned by a user.
type Listing struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Country     string    `json:"country"`
	ImageURL    string    `json:"image_url"`
	OwnerName   string    `json:"owner_name"`
	Price       float64   `json:"price"`
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
}

// Review is a user's review on a listing.
type Review struct {
	CreatedAt  time.Time
	Comment    string
	AuthorName string
	ID         uuid.UUID
	ListingID  uuid.UUID
	AuthorID   uuid.UUID
	Rating     int
}

// wrapErr converts pgx-level errors into repository errors.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
