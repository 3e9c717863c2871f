package format

import (
	"regexp"
)

var mdV1Pattern = regexp.MustCompile("([_*`\\[])")

// EscapeV1 escapes text for legacy Markdown messages.
func EscapeV1(text string) string {
	return mdV1Pattern.ReplaceAllString(text, `\$1`)
}
