package views

import (
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
)

// ErrorPage renders the terminal error view with the status code and
// the user-facing message.
func ErrorPage(p Page, status int, message string) templ.Component {
	title := fmt.Sprintf("%d %s", status, http.StatusText(status))
	return layout(title, p, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="row justify-content-center">
<div class="col-md-8 text-center mt-5">
<h1 class="display-4">%d</h1>
<p class="lead">%s</p>
<a class="btn btn-dark" href="/listings">Back to listings</a>
</div>
</div>
`, status, esc(message))
		return err
	})
}
