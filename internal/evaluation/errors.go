package evaluation

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed validation or execution.
type ErrorKind string

const (
	KindForbiddenOperation ErrorKind = "FORBIDDEN_OPERATION"
	KindQueryTooLong       ErrorKind = "QUERY_TOO_LONG"
	KindQueryTooComplex    ErrorKind = "QUERY_TOO_COMPLEX"
	KindEmptyQuery         ErrorKind = "EMPTY_QUERY"
	KindTimeout            ErrorKind = "TIMEOUT"
	KindNoColumns          ErrorKind = "NO_COLUMNS"
	KindTooManyRows        ErrorKind = "TOO_MANY_ROWS"
	KindInvalidResult      ErrorKind = "INVALID_RESULT"
	KindExecutionFailed    ErrorKind = "EXECUTION_FAILED"
)

// QueryError is a classified failure. Message is safe to show to learners
// for the pre-execution kinds; Err keeps the sanitized driver cause.
type QueryError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// UserSafe reports whether the message can be shown verbatim.
func (e *QueryError) UserSafe() bool {
	switch e.Kind {
	case KindForbiddenOperation, KindQueryTooLong, KindQueryTooComplex, KindEmptyQuery:
		return true
	}
	return false
}

// KindOf returns the kind of a classified error, or KindExecutionFailed.
func KindOf(err error) ErrorKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return KindExecutionFailed
}

func newQueryError(kind ErrorKind, msg string, cause error) *QueryError {
	return &QueryError{Kind: kind, Message: msg, Err: cause}
}
