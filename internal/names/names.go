// Package names normalizes student names and matches them against roster
// entries. Names arrive from two unrelated sources, archive filenames and
// roster cells, which can disagree in Unicode normalization form, accents,
// and encoding corruption, so every comparison goes through a canonical
// ASCII form that is never shown to users.
package names

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean removes characters that are not letters, spaces, hyphens, or
// apostrophes. This strips corruption artifacts such as box-drawing glyphs
// or stray combining marks introduced by encoding mismatches, while keeping
// casing and word boundaries intact.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonicalize converts a name to its canonical comparison form: NFD
// decomposition, ASCII letters and spaces only (dropping diacritics and
// any non-ASCII remainder), lowercased, whitespace collapsed, at most the
// first two tokens. The result is for matching only, never for display.
// Canonicalize is idempotent.
func Canonicalize(name string) string {
	decomposed := norm.NFD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 128 && (unicode.IsLetter(r) || unicode.IsSpace(r)) {
			b.WriteRune(r)
		}
	}

	tokens := strings.Fields(strings.ToLower(b.String()))
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return strings.Join(tokens, " ")
}

// FirstNameFromFilename derives a capitalized first name from an archive
// member name: extension stripped, NFC-normalized, corruption cleaned,
// first token capitalized. Returns "Student" when nothing usable remains.
func FirstNameFromFilename(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	stem = Clean(norm.NFC.String(stem))

	tokens := strings.Fields(stem)
	if len(tokens) == 0 {
		return "Student"
	}
	return capitalize(tokens[0])
}

// DisplayName derives the student display name from an archive member
// name: extension stripped, then corruption cleaned and trimmed.
func DisplayName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	return strings.TrimSpace(Clean(stem))
}

// FirstName returns the first whitespace-delimited token of a full name,
// or the empty string.
func FirstName(full string) string {
	tokens := strings.Fields(full)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	first := string(unicode.ToUpper(runes[0]))
	return first + strings.ToLower(string(runes[1:]))
}
