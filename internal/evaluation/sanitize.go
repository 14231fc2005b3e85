package evaluation

import (
	"regexp"
	"strings"
)

var (
	// Leftmost match wins, so a "--" inside a block comment and a "/*"
	// inside a line comment are both part of the enclosing comment.
	comment        = regexp.MustCompile(`(?s)/\*.*?\*/|--[^\n]*`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
	passwordAssign = regexp.MustCompile(`(?i)password=\S+`)
	tokenAssign    = regexp.MustCompile(`(?i)token=\S+`)
)

const maxErrorMessageLength = 500

// SanitizeQuery strips comments and collapses whitespace.
func SanitizeQuery(query string) string {
	q := comment.ReplaceAllString(query, " ")
	q = whitespaceRun.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}

// SanitizeErrorMessage redacts credentials and caps the length of a raw
// driver message.
func SanitizeErrorMessage(msg string) string {
	msg = passwordAssign.ReplaceAllString(msg, "password=***")
	msg = tokenAssign.ReplaceAllString(msg, "token=***")
	if r := []rune(msg); len(r) > maxErrorMessageLength {
		msg = string(r[:maxErrorMessageLength])
	}
	return msg
}

type sanitizedError struct {
	msg string
}

func (e sanitizedError) Error() string { return e.msg }

// sanitizeError replaces err with an error carrying only its sanitized text.
func sanitizeError(err error) error {
	if err == nil {
		return nil
	}
	return sanitizedError{msg: SanitizeErrorMessage(err.Error())}
}
