package views

import (
	"io"

	"github.com/a-h/templ"
)

// SignupPage renders the registration form.
func SignupPage(p Page) templ.Component {
	return layout("Sign up", p, func(w io.Writer) error {
		_, err := io.WriteString(w, `<div class="row justify-content-center">
<div class="col-md-6 col-lg-5">
<h1 class="h3 mb-3">Sign up on Wanderlust</h1>
<form method="POST" action="/signup" novalidate>
<div class="mb-3">
<label class="form-label" for="username">Username</label>
<input class="form-control" type="text" id="username" name="username" required>
</div>
<div class="mb-3">
<label class="form-label" for="email">Email</label>
<input class="form-control" type="email" id="email" name="email" required>
</div>
<div class="mb-3">
<label class="form-label" for="password">Password</label>
<input class="form-control" type="password" id="password" name="password" required>
</div>
<button class="btn btn-success" type="submit">Sign up</button>
</form>
</div>
</div>
`)
		return err
	})
}

// LoginPage renders the login form.
func LoginPage(p Page) templ.Component {
	return layout("Log in", p, func(w io.Writer) error {
		_, err := io.WriteString(w, `<div class="row justify-content-center">
<div class="col-md-6 col-lg-5">
<h1 class="h3 mb-3">Log in to Wanderlust</h1>
<form method="POST" action="/login" novalidate>
<div class="mb-3">
<label class="form-label" for="username">Username</label>
<input class="form-control" type="text" id="username" name="username" required>
</div>
<div class="mb-3">
<label class="form-label" for="password">Password</label>
<input class="form-control" type="password" id="password" name="password" required>
</div>
<button class="btn btn-success" type="submit">Log in</button>
</form>
</div>
</div>
`)
		return err
	})
}
