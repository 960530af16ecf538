package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/middleware"
	"github.com/wanderlust-app/wanderlust/internal/repository"
	"github.com/wanderlust-app/wanderlust/internal/schema"
	"github.com/wanderlust-app/wanderlust/pkg/mailer"
	"github.com/wanderlust-app/wanderlust/pkg/password"
	"github.com/wanderlust-app/wanderlust/pkg/session"
	"github.com/wanderlust-app/wanderlust/views"
)

// Auth flash messages.
const (
	msgWelcome     = "Welcome to Wanderlust!"
	msgWelcomeBack = "Welcome back to Wanderlust!"
	msgLoggedOut   = "You are logged out!"
	msgBadLogin    = "Invalid username or password."
	msgTakenLogin  = "Username or email is already taken."
)

// UserStore is the slice of the users repository Auth needs.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (*repository.User, error)
	GetByUsername(ctx context.Context, username string) (*repository.User, error)
}

// SessionRevoker drops every session a user holds, across devices.
type SessionRevoker interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// Auth handles registration, login and logout.
type Auth struct {
	users    UserStore
	sessions SessionRevoker
	mail     mailer.Sender
}

// NewAuth creates the auth handler. mail may be nil to skip the
// welcome email.
func NewAuth(users UserStore, sessions SessionRevoker, mail mailer.Sender) *Auth {
	return &Auth{users: users, sessions: sessions, mail: mail}
}

func (h *Auth) Routes(r app.Router) {
	r.GET("/signup", h.showSignup)
	r.POST("/signup", h.signup)
	r.GET("/login", h.showLogin, middleware.SaveRedirectURL())
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
	// Plain links also work.
	r.GET("/logout", h.logout)
}

func (h *Auth) showSignup(c app.Context) error {
	return c.Render(http.StatusOK, views.SignupPage(page(c)))
}

func (h *Auth) signup(c app.Context) error {
	var form schema.SignupForm
	if err := c.Bind(&form); err != nil {
		return c.Error(http.StatusBadRequest, "invalid form data", app.WithError(err))
	}

	details, err := schema.Details(form)
	if err != nil {
		return err
	}
	if len(details) > 0 {
		c.Flash(app.FlashError, strings.Join(details, ","))
		return c.Redirect(http.StatusFound, "/signup")
	}

	hash, err := password.Hash(form.Password)
	if err != nil {
		return err
	}

	user, err := h.users.Create(c.Context(), form.Username, form.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			c.Flash(app.FlashError, msgTakenLogin)
			return c.Redirect(http.StatusFound, "/signup")
		}
		return err
	}

	if err := c.AuthenticateSession(user.ID.String()); err != nil {
		return err
	}

	h.sendWelcomeEmail(c, user)

	c.Flash(app.FlashSuccess, msgWelcome)
	return c.Redirect(http.StatusFound, "/listings")
}

// sendWelcomeEmail is best effort: a mail outage must not block
// registration.
func (h *Auth) sendWelcomeEmail(c app.Context, user *repository.User) {
	if h.mail == nil {
		return
	}

	email := &mailer.Email{
		To:      []string{user.Email},
		Subject: "Welcome to Wanderlust",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your Wanderlust account is ready. Start exploring or list your own place.</p>",
			user.Username),
	}
	if err := h.mail.Send(c.Context(), email); err != nil {
		c.LogWarn("failed to send welcome email", "user_id", user.ID, "error", err)
	}
}

func (h *Auth) showLogin(c app.Context) error {
	return c.Render(http.StatusOK, views.LoginPage(page(c)))
}

func (h *Auth) login(c app.Context) error {
	var form schema.LoginForm
	if err := c.Bind(&form); err != nil {
		return c.Error(http.StatusBadRequest, "invalid form data", app.WithError(err))
	}

	user, err := h.users.GetByUsername(c.Context(), form.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.Flash(app.FlashError, msgBadLogin)
			return c.Redirect(http.StatusFound, "/login")
		}
		return err
	}

	if err := password.Verify(user.PasswordHash, form.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			c.Flash(app.FlashError, msgBadLogin)
			return c.Redirect(http.StatusFound, "/login")
		}
		return err
	}

	if err := c.AuthenticateSession(user.ID.String()); err != nil {
		return err
	}

	// Resume the navigation the login interrupted, if any.
	dest := "/listings"
	if v, err := c.SessionValue(session.RedirectURLKey); err == nil {
		if url, ok := v.(string); ok && url != "" {
			dest = url
			_ = c.DeleteSessionValue(session.RedirectURLKey)
		}
	}

	c.Flash(app.FlashSuccess, msgWelcomeBack)
	return c.Redirect(http.StatusFound, dest)
}

func (h *Auth) logout(c app.Context) error {
	// "Log out everywhere" revokes the user's sessions on every device
	// before the usual cookie teardown.
	if c.Form("all") != "" && h.sessions != nil {
		if uid := c.UserID(); uid != "" {
			if err := h.sessions.DeleteByUserID(c.Context(), uid); err != nil {
				return err
			}
		}
	}

	if err := c.DestroySession(); err != nil {
		return err
	}

	c.Flash(app.FlashSuccess, msgLoggedOut)
	return c.Redirect(http.StatusFound, "/listings")
}
