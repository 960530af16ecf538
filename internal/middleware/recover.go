package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/wanderlust-app/wanderlust/internal/app"
)

const stackSize = 4 << 10

// Recover converts a handler panic into a logged error response so a
// single bad request cannot take the worker down.
func Recover() app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					buf := make([]byte, stackSize)
					buf = buf[:runtime.Stack(buf, false)]

					c.LogError("panic recovered",
						"panic", fmt.Sprint(rec),
						"stack", string(buf),
					)
					err = c.Error(http.StatusInternalServerError, app.DefaultErrorMessage,
						app.WithError(fmt.Errorf("panic: %v", rec)))
				}
			}()
			return next(c)
		}
	}
}
