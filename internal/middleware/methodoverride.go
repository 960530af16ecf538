package middleware

import (
	"net/http"

	"github.com/wanderlust-app/wanderlust/internal/app"
)

// overrideField is the hidden form field HTML forms use to tunnel
// PUT, PATCH and DELETE through a POST submit.
const overrideField = "_method"

// MethodOverride rewrites the request method from the _method form
// field so HTML forms can reach PUT, PATCH and DELETE routes. Must run
// in the global stack, before routing matches the method.
func MethodOverride() app.Middleware {
	return func(next app.HandlerFunc) app.HandlerFunc {
		return func(c app.Context) error {
			r := c.Request()
			if r.Method == http.MethodPost {
				switch m := c.Form(overrideField); m {
				case http.MethodPut, http.MethodPatch, http.MethodDelete:
					r.Method = m
				}
			}
			return next(c)
		}
	}
}
