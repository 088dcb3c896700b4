package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MaxTagLength is the longest tag accepted, in runes.
const MaxTagLength = 35

// NormalizeTag canonicalizes a tag: NFKC-normalized, lowercased, trimmed,
// with inner whitespace runs collapsed to a single hyphen.
// "  Machine   Learning " -> "machine-learning", "ＧＯ" -> "go".
func NormalizeTag(tag string) string {
	tag = norm.NFKC.String(tag)
	// A Caser is stateful, so each call gets its own.
	tag = cases.Lower(language.Und).String(tag)
	return strings.Join(strings.FieldsFunc(tag, unicode.IsSpace), "-")
}

// NormalizeTags normalizes every tag, drops empty ones and removes duplicates,
// keeping the first occurrence.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
