// Package views renders the server-side HTML pages. Components are
// plain templ components so they can be streamed straight into the
// response writer.
package views

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/wanderlust-app/wanderlust/internal/repository"
)

// Page carries the cross-page state every view needs: the signed-in
// user for the navbar and the one-shot flash messages.
type Page struct {
	User    *repository.User
	Flashes map[string][]string
}

// esc escapes user-provided text for safe interpolation.
func esc(s string) string {
	return html.EscapeString(s)
}

// layout wraps a page body in the site shell.
func layout(title string, p Page, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s | Wanderlust</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
<link rel="stylesheet" href="/static/css/app.css">
</head>
<body class="d-flex flex-column min-vh-100">
`, esc(title)); err != nil {
			return err
		}
		if err := navbar(w, p.User); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main class="container flex-grow-1 mt-4">`+"\n"); err != nil {
			return err
		}
		if err := flashes(w, p.Flashes); err != nil {
			return err
		}
		if err := body(w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main>
<footer class="py-3 mt-4 bg-light text-center">
<span class="text-muted">&copy; Wanderlust</span>
</footer>
</body>
</html>
`)
		return err
	})
}

func navbar(w io.Writer, user *repository.User) error {
	if _, err := io.WriteString(w, `<nav class="navbar navbar-expand-md bg-body-tertiary border-bottom sticky-top">
<div class="container">
<a class="navbar-brand" href="/listings">Wanderlust</a>
<div class="navbar-nav ms-auto">
`); err != nil {
		return err
	}

	if user != nil {
		if _, err := fmt.Fprintf(w, `<span class="navbar-text me-3">@%s</span>
<a class="nav-link" href="/listings/new">Add Listing</a>
<form class="d-inline" method="POST" action="/logout">
<button class="btn btn-link nav-link" type="submit">Log out</button>
<button class="btn btn-link nav-link" type="submit" name="all" value="1">Log out everywhere</button>
</form>
`, esc(user.Username)); err != nil {
			return err
		}
	} else {
		if _, err := io.WriteString(w, `<a class="nav-link" href="/signup">Sign up</a>
<a class="nav-link" href="/login">Log in</a>
`); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, "</div>\n</div>\n</nav>\n")
	return err
}

// flashes renders the one-shot messages popped from the flash cookie.
// Categories map onto bootstrap alert variants.
func flashes(w io.Writer, msgs map[string][]string) error {
	for _, m := range msgs["success"] {
		if _, err := fmt.Fprintf(w, `<div class="alert alert-success" role="alert">%s</div>`+"\n", esc(m)); err != nil {
			return err
		}
	}
	for _, m := range msgs["error"] {
		if _, err := fmt.Fprintf(w, `<div class="alert alert-danger" role="alert">%s</div>`+"\n", esc(m)); err != nil {
			return err
		}
	}
	return nil
}
