// Package handler wires HTTP routes to the domain: registration and
// login, listing CRUD, and reviews.
package handler

import (
	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/middleware"
	"github.com/wanderlust-app/wanderlust/views"
)

// page collects the per-request view state. Popping flashes here marks
// them consumed, so every full page render shows each message once.
func page(c app.Context) views.Page {
	return views.Page{
		User:    middleware.User(c),
		Flashes: c.PopFlashes(),
	}
}
