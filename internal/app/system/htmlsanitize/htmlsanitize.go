// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips dangerous markup from user-supplied content
// before it is stored. Post and group bodies may carry basic formatting;
// titles are reduced to plain text.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	bodyPolicy  = newBodyPolicy()
	titlePolicy = bluemonday.StrictPolicy()
)

func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// Formatting the editors emit beyond the UGC defaults.
	p.AllowElements("u", "s", "sub", "sup", "mark")
	return p
}

// Sanitize cleans a fragment of user-generated HTML, keeping common
// formatting tags and dropping scripts, event handlers and javascript:
// URLs.
func Sanitize(s string) string {
	return bodyPolicy.Sanitize(s)
}

// SanitizeTitle strips all markup, leaving plain text.
func SanitizeTitle(s string) string {
	return strings.TrimSpace(titlePolicy.Sanitize(s))
}

// SanitizeToHTML is Sanitize for callers that hand the result straight
// to a template.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s)) // #nosec G203 -- sanitized above
}

// IsPlainText reports whether sanitizing would leave the string
// untouched, i.e. it carries no markup at all.
func IsPlainText(s string) bool {
	return titlePolicy.Sanitize(s) == s
}
