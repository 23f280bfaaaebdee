// Package genre turns free-form genre labels into stable slugs for
// filtering and faceting.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a label to a URL-safe slug.
// "AI-driven Synthwave" -> "ai-driven-synthwave".
// "Neuro-Glitch" -> "neuro-glitch".
// "Drum & Bass" -> "drum-bass".
func Slugify(s string) string {
	// Decompose accents so "Électro" keeps its letters.
	s = norm.NFKD.String(s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
