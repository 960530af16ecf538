package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wanderlust-app/wanderlust/pkg/binder"
	"github.com/wanderlust-app/wanderlust/pkg/cookie"
	"github.com/wanderlust-app/wanderlust/pkg/session"
	"github.com/wanderlust-app/wanderlust/pkg/storage"
)

// Flash categories used across the app.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Component is the interface for renderable templates, compatible with
// templ.Component.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

// Context provides request/response access and helper methods.
// It implements context.Context by delegating to the request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns the URL parameter value by name.
	Param(name string) string

	// Query returns the query parameter value by name.
	Query(name string) string

	// Form returns the form value by name, parsing the body on first
	// access.
	Form(name string) string

	// FormFile returns the first file for the given form key.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// Bind populates a struct from form data using `form` tags.
	Bind(v any) error

	// UserID returns the authenticated user's ID from the session, or
	// an empty string for anonymous requests.
	UserID() string

	// IsAuthenticated reports whether a user is bound to the session.
	IsAuthenticated() bool

	// IsCurrentUser reports whether the authenticated user's ID equals id.
	IsCurrentUser(id string) bool

	// Header returns a request header value.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect sends an HTTP redirect to url.
	Redirect(code int, url string) error

	// Render renders a component with the given status code.
	Render(code int, component Component) error

	// Error creates an HTTPError without writing a response. Return it
	// from the handler to trigger the error handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether a response has been written.
	Written() bool

	// Logger returns the request logger.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context.
	Get(key any) any

	// Cookie returns a plain cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a plain cookie.
	SetCookie(name, value string, maxAge int)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string)

	// CookieEncrypted returns an encrypted cookie value.
	CookieEncrypted(name string) (string, error)

	// SetCookieEncrypted sets an encrypted cookie.
	SetCookieEncrypted(name, value string, maxAge int) error

	// Flash queues a one-shot message under the given category. Queued
	// messages survive exactly one render: they are written to an
	// encrypted cookie and removed when PopFlashes reads them.
	Flash(category, message string)

	// PopFlashes returns all queued flash messages grouped by category
	// and clears the queue.
	PopFlashes() map[string][]string

	// Session returns the current session, loading it lazily.
	// Returns nil, nil when the request carries no session.
	Session() (*session.Session, error)

	// InitSession creates a new session for this request.
	InitSession() error

	// AuthenticateSession binds a user to the session and rotates the
	// token. Creates a session first when none exists.
	AuthenticateSession(userID string) error

	// SessionValue retrieves a value from the session.
	SessionValue(key string) (any, error)

	// SetSessionValue stores a value in the session.
	SetSessionValue(key string, val any) error

	// DeleteSessionValue removes a value from the session.
	DeleteSessionValue(key string) error

	// DestroySession deletes the session and clears its cookie.
	DestroySession() error

	// ResponseWriter returns the wrapped response writer.
	ResponseWriter() *ResponseWriter

	// Upload stores data in object storage.
	Upload(r io.Reader, size int64, opts ...storage.PutOption) (*storage.FileInfo, error)

	// DeleteFile removes a file from object storage.
	DeleteFile(key string) error

	// FileURL returns a URL for a stored file.
	FileURL(key string) (string, error)
}

// requestContext implements Context.
type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	logger         *slog.Logger
	cookieManager  *cookie.Manager
	sessionManager *session.Manager
	storage        storage.Storage

	session       *session.Session
	sessionLoaded bool
	sessionHooked bool

	pendingFlashes map[string][]string
	flashPopped    bool
	flashHooked    bool
}

func newContext(w http.ResponseWriter, r *http.Request, a *App) *requestContext {
	rw := NewResponseWriter(w)
	return &requestContext{
		request:        r,
		response:       rw,
		responseWriter: rw,
		logger:         a.logger,
		cookieManager:  a.cookieManager,
		sessionManager: a.sessionManager,
		storage:        a.storage,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Bind(v any) error {
	return binder.Form()(c.request, v)
}

func (c *requestContext) UserID() string {
	sess, err := c.Session()
	if err != nil || sess == nil || sess.UserID == nil {
		return ""
	}
	return *sess.UserID
}

func (c *requestContext) IsAuthenticated() bool {
	return c.UserID() != ""
}

func (c *requestContext) IsCurrentUser(id string) bool {
	uid := c.UserID()
	return uid != "" && uid == id
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Render(code int, component Component) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c.request.Context(), c.response)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.cookieManager.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.cookieManager.Delete(c.response, name)
}

func (c *requestContext) CookieEncrypted(name string) (string, error) {
	return c.cookieManager.GetEncrypted(c.request, name)
}

func (c *requestContext) SetCookieEncrypted(name, value string, maxAge int) error {
	return c.cookieManager.SetEncrypted(c.response, name, value, maxAge)
}

// registerFlashHook flushes flash state into the cookie right before
// the response commits.
func (c *requestContext) registerFlashHook() {
	if c.flashHooked || c.responseWriter == nil {
		return
	}
	c.flashHooked = true
	c.responseWriter.OnBeforeWrite(c.flushFlashes)
}

func (c *requestContext) flushFlashes() {
	if len(c.pendingFlashes) == 0 {
		if c.flashPopped {
			c.cookieManager.ClearFlashes(c.response)
		}
		return
	}

	out := make(map[string][]string)
	if !c.flashPopped {
		// Carry over messages queued by earlier requests that have not
		// been shown yet.
		if existing, err := c.cookieManager.ReadFlashes(c.request); err == nil {
			out = existing
		}
	}
	for category, msgs := range c.pendingFlashes {
		out[category] = append(out[category], msgs...)
	}

	if err := c.cookieManager.WriteFlashes(c.response, out); err != nil {
		c.logger.ErrorContext(c.Context(), "failed to write flash cookie", "error", err)
	}
}

func (c *requestContext) Flash(category, message string) {
	if c.pendingFlashes == nil {
		c.pendingFlashes = make(map[string][]string)
	}
	c.pendingFlashes[category] = append(c.pendingFlashes[category], message)
	c.registerFlashHook()
}

func (c *requestContext) PopFlashes() map[string][]string {
	c.registerFlashHook()

	out := make(map[string][]string)
	if !c.flashPopped {
		if existing, err := c.cookieManager.ReadFlashes(c.request); err == nil {
			out = existing
		}
		c.flashPopped = true
	}

	// Include messages queued during this request so a render without a
	// redirect still shows them.
	for category, msgs := range c.pendingFlashes {
		out[category] = append(out[category], msgs...)
	}
	c.pendingFlashes = nil

	return out
}

// registerSessionHook persists dirty session state before the response
// commits. Errors are logged, not propagated, so rendering proceeds.
func (c *requestContext) registerSessionHook() {
	if c.sessionHooked || c.sessionManager == nil || c.responseWriter == nil {
		return
	}
	c.sessionHooked = true
	c.responseWriter.OnBeforeWrite(func() {
		if c.session != nil && c.session.IsDirty() {
			if err := c.sessionManager.Store().Update(c.Context(), c.session); err != nil {
				c.logger.ErrorContext(c.Context(), "failed to save session", "error", err)
				return
			}
			c.session.ClearDirty()
		}
	})
}

func (c *requestContext) Session() (*session.Session, error) {
	if c.sessionManager == nil {
		return nil, session.ErrNotConfigured
	}

	c.registerSessionHook()

	if c.sessionLoaded {
		return c.session, nil
	}

	sess, err := c.sessionManager.Load(c.Context(), c.request)
	if err != nil {
		return nil, err
	}

	c.session = sess
	c.sessionLoaded = true
	return c.session, nil
}

func (c *requestContext) InitSession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	c.registerSessionHook()

	sess, err := c.sessionManager.Create(c.Context(), c.request)
	if err != nil {
		return err
	}

	c.session = sess
	c.sessionLoaded = true
	c.sessionManager.Save(c.response, sess)
	return nil
}

func (c *requestContext) AuthenticateSession(userID string) error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	sess, err := c.Session()
	if err != nil {
		c.logger.WarnContext(c.Context(), "failed to load session", "error", err)
	}
	if sess == nil {
		if err := c.InitSession(); err != nil {
			return err
		}
		sess = c.session
	}

	sess.UserID = &userID
	sess.MarkDirty()

	// Token rotation prevents session fixation: a pre-login token an
	// attacker planted stops resolving to this session.
	if err := c.sessionManager.RotateToken(c.Context(), sess); err != nil {
		return err
	}

	c.sessionManager.Save(c.response, sess)
	return nil
}

func (c *requestContext) SessionValue(key string) (any, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, session.ErrNotFound
	}

	val, ok := sess.GetValue(key)
	if !ok {
		return nil, nil
	}
	return val, nil
}

func (c *requestContext) SetSessionValue(key string, val any) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return session.ErrNotFound
	}

	sess.SetValue(key, val)
	return nil
}

func (c *requestContext) DeleteSessionValue(key string) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return session.ErrNotFound
	}

	sess.DeleteValue(key)
	return nil
}

func (c *requestContext) DestroySession() error {
	if c.sessionManager == nil {
		return session.ErrNotConfigured
	}

	if c.session != nil {
		if err := c.sessionManager.Store().Delete(c.Context(), c.session.ID); err != nil {
			return err
		}
	}

	c.sessionManager.Destroy(c.response)

	c.session = nil
	c.sessionLoaded = true
	return nil
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Upload(r io.Reader, size int64, opts ...storage.PutOption) (*storage.FileInfo, error) {
	if c.storage == nil {
		return nil, storage.ErrInvalidConfig
	}
	return c.storage.Put(c.Context(), r, size, opts...)
}

func (c *requestContext) DeleteFile(key string) error {
	if c.storage == nil {
		return storage.ErrInvalidConfig
	}
	return c.storage.Delete(c.Context(), key)
}

func (c *requestContext) FileURL(key string) (string, error) {
	if c.storage == nil {
		return "", storage.ErrInvalidConfig
	}
	return c.storage.URL(c.Context(), key)
}
