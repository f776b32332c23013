// Package feedback turns raw model output into user-facing comments and
// scores, and wraps the text-generation providers that produce it.
package feedback

import (
	"regexp"
	"strings"
	"unicode"
)

// maxCommentLength is the hard cap on a comment before the ellipsis
// marker is appended.
const maxCommentLength = 1000

// substitution is one vocabulary softening rule, applied as a
// case-insensitive whole-word replacement.
type substitution struct {
	pattern *regexp.Regexp
	repl    string
}

// substitutions soften model vocabulary the course style guide flags.
// Order is fixed so output is reproducible.
var substitutions = []substitution{
	{regexp.MustCompile(`(?i)\bcommendable\b`), "good"},
	{regexp.MustCompile(`(?i)\bexcellent\b`), "very good"},
	{regexp.MustCompile(`(?i)\binnovative\b`), "new"},
	{regexp.MustCompile(`(?i)\bunique\b`), "special"},
	{regexp.MustCompile(`(?i)\bfostering\b`), "helping"},
	{regexp.MustCompile(`(?i)\bcomprehensive\b`), "complete"},
	{regexp.MustCompile(`(?i)\bensure\b`), "make sure"},
	{regexp.MustCompile(`(?i)\bshowcases\b`), "shows"},
	{regexp.MustCompile(`(?i)\bgreat\b`), "good"},
}

var (
	wordCommaRE   = regexp.MustCompile(`^\w+,`)
	scoreRE       = regexp.MustCompile(`(?i)\bscore\s*:\s*(\d(?:\.\d)?)`)
	leadingNameRE = regexp.MustCompile(`^[^,]+,`)
	salutationRE  = regexp.MustCompile(`(?i)^[a-záéíóúñ][a-záéíóúñ]+\s*,\s*`)
)

// Process converts raw generated feedback into a user-facing comment and
// an extracted score string. It softens vocabulary, prepends "You, " when
// the text neither starts with "You" nor with a word followed by a comma,
// truncates to 1000 characters, and splits off a trailing "score: N(.N)"
// fragment. The score is empty when no fragment is found.
func Process(raw string) (comment, score string) {
	comment = Soften(raw)

	if !strings.HasPrefix(comment, "You") && !wordCommaRE.MatchString(comment) {
		comment = "You, " + comment
	}

	if runes := []rune(comment); len(runes) > maxCommentLength {
		comment = string(runes[:maxCommentLength]) + "..."
	}

	return splitScore(comment)
}

// Soften applies the fixed vocabulary substitution table.
func Soften(text string) string {
	for _, sub := range substitutions {
		text = sub.pattern.ReplaceAllLiteralString(text, sub.repl)
	}
	return text
}

// splitScore extracts a trailing numeric score. The text before the match
// point becomes the comment, trimmed.
func splitScore(comment string) (string, string) {
	loc := scoreRE.FindStringSubmatchIndex(comment)
	if loc == nil {
		return comment, ""
	}
	score := comment[loc[2]:loc[3]]
	return strings.TrimSpace(comment[:loc[0]]), score
}

// Salute strips any leading "<Name>, " salutation and, when the comment
// does not already start with firstName (case-insensitively), re-prepends
// "<firstName>, " with the first letter of the remainder lowercased.
func Salute(comment, firstName string) string {
	if comment == "" {
		return comment
	}

	comment = salutationRE.ReplaceAllString(comment, "")
	if strings.HasPrefix(strings.ToLower(comment), strings.ToLower(firstName)) {
		return comment
	}
	if comment == "" {
		return ""
	}
	return firstName + ", " + lowerFirst(comment)
}

// Resalute rewrites the leading salutation (everything up to the first
// comma) to the authoritative first name from the roster.
func Resalute(comment, firstName string) string {
	if comment == "" {
		return comment
	}
	return leadingNameRE.ReplaceAllString(comment, firstName+",")
}

func lowerFirst(s string) string {
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
