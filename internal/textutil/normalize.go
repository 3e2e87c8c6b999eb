package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeLabel lowercases value using language-neutral Unicode case mapping.
// It does not trim or otherwise rewrite the input.
func NormalizeLabel(value string) string {
	if value == "" {
		return ""
	}
	// cases.Caser keeps per-call state and must not be shared across goroutines.
	return cases.Lower(language.Und).String(value)
}

// BaseName returns the portion of a normalized label before its first hyphen,
// or the whole label when it contains none.
func BaseName(normalized string) string {
	if idx := strings.IndexByte(normalized, '-'); idx >= 0 {
		return normalized[:idx]
	}
	return normalized
}

// Fold prepares free text for substring search: NFKC, lowercase, trimmed.
func Fold(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return NormalizeLabel(norm.NFKC.String(value))
}
