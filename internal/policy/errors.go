package policy

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies why a policy server exchange failed.
type ErrorCategory string

const (
	// ErrorUnreachable means the connection could not be made or was cut.
	ErrorUnreachable ErrorCategory = "unreachable"

	// ErrorTimeout means the server did not answer within the configured timeout.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadStatus means the server answered with a non-2xx status.
	ErrorBadStatus ErrorCategory = "bad_status"

	// ErrorBadData means the body could not be read, was not a JSON object,
	// or lacked a field the caller required.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorInternal means the request could not be built.
	ErrorInternal ErrorCategory = "internal"
)

// Error is a failed exchange with a policy or token server. The request is
// never retried; callers collapse it into their own failure outcome.
type Error struct {
	Category   ErrorCategory
	Endpoint   string
	StatusCode int
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("policy %s [%s]: %s: %v", e.Endpoint, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("policy %s [%s]: %s", e.Endpoint, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func newError(category ErrorCategory, endpoint, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Endpoint:   endpoint,
		Message:    message,
		Underlying: underlying,
	}
}

// Category extracts the category from err, or ErrorInternal when err is not
// a policy error.
func Category(err error) ErrorCategory {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ErrorInternal
}
