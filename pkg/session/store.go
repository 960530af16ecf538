package session

import (
	"context"
	"time"
)

// Store defines the interface for session persistence. The application
// implements it against its own storage backend.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by its token.
	// Returns ErrNotFound if the session doesn't exist.
	// Returns ErrExpired if the session has expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves changes to an existing session.
	Update(ctx context.Context, s *Session) error

	// Delete removes a session by its ID.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes all sessions for a user ("logout everywhere").
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired removes all sessions past their expiry and reports how
	// many were purged. Called periodically by the cleanup job.
	DeleteExpired(ctx context.Context) (int64, error)

	// Touch updates LastActiveAt without loading the full session.
	Touch(ctx context.Context, id string, lastActiveAt time.Time) error
}
