// Package template renders campaign message templates. Only the three
// documented placeholders are substituted; anything else passes through
// untouched.
package template

import (
	"regexp"
	"strings"
)

// MaxMessageLen bounds both the template and the rendered message. Fixed
// by the provider contract, not configurable.
const MaxMessageLen = 480

// Values supplies the placeholder data for one recipient. Zero values
// render as empty strings.
type Values struct {
	CustomerName string
	ReceiverName string
	Phone        string
}

var (
	hspaceRun  = regexp.MustCompile(`[ \t]{2,}`)
	trailingWS = regexp.MustCompile(`[ \t]+\n`)
)

// Render substitutes placeholders and normalizes whitespace: runs of two
// or more spaces/tabs collapse to one space, trailing whitespace before a
// newline is stripped, and the whole result is trimmed. Newlines inside
// the template are preserved.
func Render(tmpl string, v Values) string {
	r := strings.NewReplacer(
		"{{customer_name}}", v.CustomerName,
		"{{receiver_name}}", v.ReceiverName,
		"{{phone}}", v.Phone,
	)
	out := r.Replace(tmpl)
	out = hspaceRun.ReplaceAllString(out, " ")
	out = trailingWS.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}
