package views

import (
	"bytes"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/wanderlust-app/wanderlust/pkg/sanitizer"
)

var (
	md     goldmark.Markdown
	mdOnce sync.Once
)

// Markdown renders user-written markdown to sanitized HTML. Listing
// descriptions go through this before they reach a page.
func Markdown(src string) string {
	mdOnce.Do(func() {
		md = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		// Fall back to plain text when the source cannot be parsed.
		return "<p>" + esc(src) + "</p>"
	}
	return sanitizer.HTML(buf.String())
}
