// Package inci holds the shared normalization and list-parsing utilities for
// ingredient names. Every matching stage compares names through NormalizeName;
// keeping it in one place is what makes the pipeline's set operations line up.
package inci

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	punctuationRegex = regexp.MustCompile(`[^\w\s]`)
	multiSpaceRegex  = regexp.MustCompile(`\s+`)
)

// NormalizeName produces the canonical comparison key for an ingredient name:
// accents decomposed and stripped, non-ASCII remnants dropped, lowercased,
// punctuation replaced by spaces, whitespace collapsed. Empty or
// whitespace-only input yields "". The function is pure and idempotent.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}

	// NFKD decomposition, then drop the combining marks (é -> e).
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}

	s := strings.ToLower(b.String())
	s = punctuationRegex.ReplaceAllString(s, " ")
	s = multiSpaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeAll maps NormalizeName over a slice, preserving order.
func NormalizeAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeName(n)
	}
	return out
}
