// Package middleware holds the request-gating chain: authentication,
// ownership checks, payload validation, and the ambient plumbing every
// request passes through.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/repository"
	"github.com/wanderlust-app/wanderlust/pkg/session"
)

// MsgLoginRequired is flashed when an anonymous user hits a gated route.
const MsgLoginRequired = "You must be logged in to create a listing."

type currentUserKey struct{}
type redirectURLKey struct{}

// UserGetter loads users for the CurrentUser middleware.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repository.User, error)
}

// CurrentUser resolves the session's user once per request and exposes
// it read-only to downstream handlers and views. Anonymous requests
// continue with a nil user; a stale session (user deleted) is treated
// as anonymous rather than failing the request.
func CurrentUser(users UserGetter) app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) error {
			uid := c.UserID()
			if uid == "" {
				return next(c)
			}

			id, err := uuid.Parse(uid)
			if err != nil {
				return next(c)
			}

			user, err := users.GetByID(c.Context(), id)
			if err != nil {
				c.LogWarn("session user not found", "user_id", uid, "error", err)
				return next(c)
			}

			c.Set(currentUserKey{}, user)
			return next(c)
		}
	}
}

// User returns the resolved current user, or nil for anonymous requests.
func User(c app.Context) *repository.User {
	if u, ok := c.Get(currentUserKey{}).(*repository.User); ok {
		return u
	}
	return nil
}

// RequireLogin gates a route behind authentication. Anonymous requests
// get the original URL recorded in the session so login can resume the
// navigation, an error flash, and a redirect to /login.
func RequireLogin() app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) error {
			if c.IsAuthenticated() {
				return next(c)
			}

			// Anonymous visitors have no session yet; create one so the
			// destination survives the trip through /login.
			if sess, err := c.Session(); err == nil && sess == nil {
				if err := c.InitSession(); err != nil {
					c.LogWarn("failed to init session", "error", err)
				}
			}
			if err := c.SetSessionValue(session.RedirectURLKey, c.Request().URL.RequestURI()); err != nil {
				c.LogWarn("failed to save redirect url", "error", err)
			}
			c.Flash(app.FlashError, MsgLoginRequired)
			return c.Redirect(http.StatusFound, "/login")
		}
	}
}

// SaveRedirectURL copies a pending post-login destination from the
// session into request-local state so the login view can carry it.
// It never halts the pipeline.
func SaveRedirectURL() app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) error {
			if v, err := c.SessionValue(session.RedirectURLKey); err == nil {
				if url, ok := v.(string); ok && url != "" {
					c.Set(redirectURLKey{}, url)
				}
			}
			return next(c)
		}
	}
}

// RedirectURL returns the post-login destination saved by
// SaveRedirectURL, or an empty string.
func RedirectURL(c app.Context) string {
	if v, ok := c.Get(redirectURLKey{}).(string); ok {
		return v
	}
	return ""
}
