package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wanderlust-app/wanderlust/pkg/session"
)

// Sessions implements session.Store on PostgreSQL. Session values are
// stored as a jsonb document.
type Sessions struct {
	pool *pgxpool.Pool
}

// NewSessions creates a Sessions store.
func NewSessions(pool *pgxpool.Pool) *Sessions {
	return &Sessions{pool: pool}
}

// Create persists a new session.
func (r *Sessions) Create(ctx context.Context, s *session.Session) error {
	values, err := marshalValues(s.Values)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO sessions (id, token, user_id, ip, user_agent, data, created_at, last_active_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.pool.Exec(ctx, q,
		s.ID, s.Token, s.UserID, s.IP, s.UserAgent, values, s.CreatedAt, s.LastActiveAt, s.ExpiresAt)
	return wrapErr(err)
}

// Get retrieves a session by token.
func (r *Sessions) Get(ctx context.Context, token string) (*session.Session, error) {
	const q = `
		SELECT id, token, user_id, ip, user_agent, data, created_at, last_active_at, expires_at
		FROM sessions WHERE token = $1`

	var (
		s      session.Session
		values []byte
	)
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&s.ID, &s.Token, &s.UserID, &s.IP, &s.UserAgent, &values,
		&s.CreatedAt, &s.LastActiveAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(wrapErr(err), ErrNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(values, &s.Values); err != nil {
		return nil, fmt.Errorf("decode session values: %w", err)
	}

	if s.IsExpired() {
		return nil, session.ErrExpired
	}
	return &s, nil
}

// Update saves changes to an existing session, including token rotation.
func (r *Sessions) Update(ctx context.Context, s *session.Session) error {
	values, err := marshalValues(s.Values)
	if err != nil {
		return err
	}

	const q = `
		UPDATE sessions
		SET token = $2, user_id = $3, data = $4, last_active_at = $5, expires_at = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, s.ID, s.Token, s.UserID, values, s.LastActiveAt, s.ExpiresAt)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// Delete removes a session by ID.
func (r *Sessions) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return wrapErr(err)
}

// DeleteByUserID removes all of a user's sessions.
func (r *Sessions) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return wrapErr(err)
}

// DeleteExpired purges expired sessions and reports how many were
// removed. Runs on a schedule from the cleanup job.
func (r *Sessions) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, wrapErr(err)
	}
	return tag.RowsAffected(), nil
}

// Touch updates the session's last activity timestamp.
func (r *Sessions) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE sessions SET last_active_at = $2 WHERE id = $1`, id, lastActiveAt)
	return wrapErr(err)
}

func marshalValues(values map[string]any) ([]byte, error) {
	if values == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode session values: %w", err)
	}
	return data, nil
}

var _ session.Store = (*Sessions)(nil)
