package evaluation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// The denylist is pattern based, not a parser. It can reject a literal such
// as 'DROP' inside quotes and can miss obfuscated keywords; the grading
// connection is expected to be read-only regardless.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(DROP|DELETE|UPDATE|INSERT|ALTER|CREATE|TRUNCATE|REPLACE)\b`),
	regexp.MustCompile(`(?i);\s*(DROP|DELETE|UPDATE|INSERT|ALTER|CREATE|TRUNCATE|REPLACE)`),
	regexp.MustCompile(`(?i)\bLOAD_FILE\b`),
	regexp.MustCompile(`(?i)\bINTO\s+OUTFILE\b`),
	regexp.MustCompile(`(?i)\bINTO\s+DUMPFILE\b`),
	regexp.MustCompile(`(?i)\bBENCHMARK\s*\(`),
	regexp.MustCompile(`(?i)SLEEP\s*\(`),
	regexp.MustCompile(`(?i)\bWAITFOR\b`),
}

// Validator rejects unsafe, oversized or overly nested query text.
type Validator struct {
	maxLength      int
	maxParentheses int
}

// NewValidator creates a Validator from limits; zero fields take defaults.
func NewValidator(limits Limits) *Validator {
	limits = limits.withDefaults()
	return &Validator{
		maxLength:      limits.MaxQueryLength,
		maxParentheses: limits.MaxParentheses,
	}
}

// Validate checks forbidden operations, then length, then complexity. The
// first violation is returned as a *QueryError.
func (v *Validator) Validate(query string) error {
	for _, p := range forbiddenPatterns {
		if p.MatchString(query) {
			return newQueryError(KindForbiddenOperation,
				"Query contains forbidden operations. Only SELECT queries are allowed.", nil)
		}
	}

	if utf8.RuneCountInString(query) > v.maxLength {
		return newQueryError(KindQueryTooLong,
			fmt.Sprintf("Query exceeds the maximum length of %d characters.", v.maxLength), nil)
	}

	if strings.Count(query, "(") > v.maxParentheses {
		return newQueryError(KindQueryTooComplex,
			fmt.Sprintf("Query is too complex: more than %d nested expressions or subqueries.", v.maxParentheses), nil)
	}

	return nil
}
