package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/wanderlust-app/wanderlust/pkg/id"
)

// Default session configuration.
const (
	defaultCookieName = "__sid"
	defaultMaxAge     = 86400 * 7 // one week, matching the session cookie TTL

	// touchInterval bounds how often a loaded session's activity
	// timestamp is written back to the store.
	touchInterval = 5 * time.Minute
)

// Manager handles session lifecycle and cookie management.
type Manager struct {
	store      Store
	logger     *slog.Logger
	cookieName string
	domain     string
	path       string
	maxAge     int
	sameSite   http.SameSite
	secure     bool
	httpOnly   bool
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// NewManager creates a session Manager backed by the given store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:      store,
		cookieName: defaultCookieName,
		maxAge:     defaultMaxAge,
		path:       "/",
		httpOnly:   true,
		sameSite:   http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithMaxAge sets the session max age in seconds.
func WithMaxAge(seconds int) ManagerOption {
	return func(m *Manager) {
		if seconds > 0 {
			m.maxAge = seconds
		}
	}
}

// WithDomain sets the session cookie domain.
func WithDomain(domain string) ManagerOption {
	return func(m *Manager) { m.domain = domain }
}

// WithSecure sets the session cookie Secure flag.
func WithSecure(secure bool) ManagerOption {
	return func(m *Manager) { m.secure = secure }
}

// WithSameSite sets the session cookie SameSite attribute.
func WithSameSite(ss http.SameSite) ManagerOption {
	return func(m *Manager) { m.sameSite = ss }
}

// SetLogger sets the logger for session events. Called by the app after
// initialization.
func (m *Manager) SetLogger(l *slog.Logger) {
	if l != nil {
		m.logger = l
	}
}

// Load loads an existing session from the request cookie.
// Returns nil, nil if no session cookie exists, or if the cookie is
// stale: a purged or expired session must not fail the request, it
// just makes it anonymous.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil // No session cookie
	}

	sess, err := m.store.Get(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired) {
			return nil, nil
		}
		return nil, err
	}

	if time.Since(sess.LastActiveAt) > touchInterval {
		now := time.Now()
		if err := m.store.Touch(ctx, sess.ID, now); err != nil {
			if m.logger != nil {
				m.logger.Warn("failed to touch session", "session_id", sess.ID, "error", err)
			}
		} else {
			sess.LastActiveAt = now
		}
	}
	return sess, nil
}

// Create creates a new session with metadata extracted from the request.
func (m *Manager) Create(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := New(id.NewULID(), token, time.Now().Add(time.Duration(m.maxAge)*time.Second))
	sess.IP = clientIP(r)
	sess.UserAgent = r.UserAgent()

	if err := m.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	sess.ClearNew()
	sess.ClearDirty()
	return sess, nil
}

// Save writes the session cookie to the response.
func (m *Manager) Save(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, m.cookie(sess.Token, m.maxAge))
}

// RotateToken generates a new token for the session. Called after
// authentication to prevent session fixation: the pre-login token an
// attacker may have planted stops resolving to the session.
func (m *Manager) RotateToken(ctx context.Context, sess *Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	sess.Token = newToken
	sess.MarkDirty()

	if err := m.store.Update(ctx, sess); err != nil {
		sess.Token = oldToken // Rollback on error
		return err
	}
	return nil
}

// Destroy clears the session cookie.
func (m *Manager) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

// Store returns the underlying session store.
func (m *Manager) Store() Store {
	return m.store
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// clientIP extracts the client address, honoring the usual proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
