package portal

import (
	"errors"
	"fmt"
)

// Sentinel errors usable with errors.Is.
var (
	// ErrChallenged is returned when an anti-automation interstitial is
	// detected in portal HTML.
	ErrChallenged = errors.New("portal challenge detected")

	// ErrEmptyResult is returned when a jurisdiction load parses zero
	// entries. Empty jurisdiction data is never substituted with defaults.
	ErrEmptyResult = errors.New("portal returned no parseable entries")
)

// InputError marks invalid caller input, such as an unresolvable
// jurisdiction name. It is never retried.
type InputError struct {
	msg string
}

// NewInputError builds an InputError with a formatted message.
func NewInputError(format string, args ...any) *InputError {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string {
	return e.msg
}

// StatusError reports a non-success HTTP status from the portal.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
}

// TransportError wraps the last failure after the retry budget is spent.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("portal request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
