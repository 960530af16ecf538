// Package sanitizer strips dangerous HTML from user-generated content.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict *bluemonday.Policy
	safe   *bluemonday.Policy
	once   sync.Once
)

func initPolicies() {
	once.Do(func() {
		// strict strips all HTML, leaving plain text.
		strict = bluemonday.StrictPolicy()

		// safe allows the formatting subset rendered from listing
		// description markdown.
		safe = bluemonday.NewPolicy()
		safe.AllowStandardURLs()
		safe.AllowElements(
			"p", "br", "h1", "h2", "h3",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		safe.AllowAttrs("href").OnElements("a")
		safe.RequireNoFollowOnLinks(true)
	})
}

// Text strips all HTML from user input, returning plain text.
// Use for single-line fields like titles and review comments.
func Text(s string) string {
	initPolicies()
	return strict.Sanitize(s)
}

// HTML allows safe formatting tags and strips everything dangerous:
// scripts, event handlers, javascript: URLs. Use for rendered markdown.
func HTML(s string) string {
	initPolicies()
	return safe.Sanitize(s)
}
