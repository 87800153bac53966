package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// GenerateSlug turns a display name into a URL safe slug.
// "The Forest Hiker" → "the-forest-hiker", "Crème Brûlée" → "creme-brulee"
func GenerateSlug(input string) string {
	// Step 1: Strip diacritics
	ascii := RemoveDiacritics(input)

	// Step 2: Lowercase and hyphenate whitespace
	hyphenated := strings.Join(strings.Fields(strings.ToLower(ascii)), "-")

	// Step 3: Keep only a-z, 0-9 and hyphens
	cleaned := nonSlugChars.ReplaceAllString(hyphenated, "")

	// Step 4: Collapse and trim hyphens
	return strings.Trim(hyphenRuns.ReplaceAllString(cleaned, "-"), "-")
}

// RemoveDiacritics decomposes input and drops the combining marks.
func RemoveDiacritics(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}
