package handler

import (
	"net/http"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/middleware"
	"github.com/wanderlust-app/wanderlust/views"
)

// ErrorHandler is the terminal error handler: every error a handler or
// middleware returns ends up here and becomes a rendered error page.
// Unrecognized errors are masked behind the default message so internal
// details never leak to the client.
func ErrorHandler() app.ErrorHandler {
	return func(c app.Context, err error) error {
		he := app.AsHTTPError(err)
		if he == nil {
			he = app.ErrInternal("", app.WithError(err))
		}
		if he.RequestID == "" {
			he.RequestID = middleware.GetRequestID(c.Context())
		}

		if he.StatusCode() >= http.StatusInternalServerError {
			c.LogError("request failed",
				"status", he.StatusCode(),
				"request_id", he.RequestID,
				"error", he.Unwrap(),
			)
		}

		return c.Render(he.StatusCode(), views.ErrorPage(page(c), he.StatusCode(), he.Message))
	}
}

// NotFound handles unmatched routes.
func NotFound() app.HandlerFunc {
	return func(c app.Context) error {
		return c.Error(http.StatusNotFound, "Page Not Found!")
	}
}
