// Package normalize provides name normalization utilities.
// This is part of the platform layer and contains no business logic.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes runes and removes combining marks,
// so "Citroën" and "Citroen" compare equal.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Key canonicalizes a dealer, brand, or tenant name for equality tests:
// lower-case, diacritics stripped, every non-alphanumeric rune dropped.
// All name matching in the system goes through this function, because
// upstream forms deliver names with inconsistent casing, accents, and
// punctuation.
func Key(s string) string {
	if s == "" {
		return ""
	}

	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(stripDiacritics, lowered)
	if err != nil {
		stripped = lowered
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal reports whether two names are the same under Key normalization.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// Contains reports whether the normalized needle occurs as a substring of
// the normalized haystack. Used for brand-in-dealer-name inference.
func Contains(haystack, needle string) bool {
	nk := Key(needle)
	if nk == "" {
		return false
	}
	return strings.Contains(Key(haystack), nk)
}

// UpperSnake converts a tenant name to the UPPER_SNAKE_CASE form used to
// derive credential environment variable names.
func UpperSnake(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, f := range fields {
		stripped, _, err := transform.String(stripDiacritics, f)
		if err == nil {
			f = stripped
		}
		fields[i] = strings.ToUpper(f)
	}
	return strings.Join(fields, "_")
}
