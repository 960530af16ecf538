package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/pkg/id"
	"github.com/wanderlust-app/wanderlust/pkg/logger"
)

type requestIDKey struct{}

// requestIDHeaders are checked in order for an inbound request ID
// before a new one is generated.
var requestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

// RequestID assigns each request a ULID, honoring an inbound ID from a
// trusted proxy, and echoes it on the response.
func RequestID() app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) error {
			r := c.Request()

			var rid string
			for _, h := range requestIDHeaders {
				if v := r.Header.Get(h); v != "" {
					rid = v
					break
				}
			}
			if rid == "" {
				rid = id.NewULID()
			}

			ctx := context.WithValue(r.Context(), requestIDKey{}, rid)
			*r = *r.WithContext(ctx)

			c.SetHeader("X-Request-ID", rid)
			return next(c)
		}
	}
}

// GetRequestID returns the request ID from a context, or "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDFromRequest returns the request ID carried by r, or "".
func RequestIDFromRequest(r *http.Request) string {
	return GetRequestID(r.Context())
}

// RequestIDExtractor feeds the request ID into every log line made
// with the request's context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if rid := GetRequestID(ctx); rid != "" {
			return slog.String("request_id", rid), true
		}
		return slog.Attr{}, false
	}
}
