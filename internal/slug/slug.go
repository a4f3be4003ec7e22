// Package slug derives URL-safe identifier tokens from human-entered names.
// The same derivation backs site identifiers, generated domain labels and
// container names, so it must stay deterministic.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxLength = 63

var (
	nonAlnum        = regexp.MustCompile(`[^a-z0-9]+`)
	diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Make turns a human-entered name into a slug: diacritics stripped,
// lower-cased, runs of non-alphanumerics collapsed to single hyphens,
// hyphens trimmed from both ends, capped at 63 characters.
func Make(name string) string {
	folded, _, err := transform.String(diacriticFolder, name)
	if err != nil {
		folded = name
	}

	s := strings.ToLower(folded)
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}
	return s
}
