package app

// Handler declares routes on a router.
//
// Example:
//
//	type AuthHandler struct {
//	    users *repository.Users
//	}
//
//	func (h *AuthHandler) Routes(r app.Router) {
//	    r.GET("/login", h.showLogin)
//	    r.POST("/login", h.handleLogin)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers. Returning a non-nil
// error hands control to the configured error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns. It can
// short-circuit processing by not calling next.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
