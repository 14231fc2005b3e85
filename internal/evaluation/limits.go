package evaluation

import "time"

// Limits bounds what a submitted query may be and do.
type Limits struct {
	Timeout        time.Duration
	MaxRows        int
	MaxQueryLength int
	MaxParentheses int
}

// DefaultLimits returns the grading limits: 10s, 5000 rows, 10000
// characters and 20 opening parentheses.
func DefaultLimits() Limits {
	return Limits{
		Timeout:        10 * time.Second,
		MaxRows:        5000,
		MaxQueryLength: 10000,
		MaxParentheses: 20,
	}
}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.Timeout <= 0 {
		l.Timeout = d.Timeout
	}
	if l.MaxRows <= 0 {
		l.MaxRows = d.MaxRows
	}
	if l.MaxQueryLength <= 0 {
		l.MaxQueryLength = d.MaxQueryLength
	}
	if l.MaxParentheses <= 0 {
		l.MaxParentheses = d.MaxParentheses
	}
	return l
}
