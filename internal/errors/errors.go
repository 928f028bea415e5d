package errors

import (
	"errors"
	"fmt"
)

// Domain error taxonomy shared by the rate limiter and matchmaking engine.
var (
	// ErrUnknownAction means an action kind outside the fixed enumeration was
	// used. Programming error, not a user-facing condition.
	ErrUnknownAction = errors.New("unknown action kind")

	// ErrUserNotFound means the acting user has no profile.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidInput means caller-supplied data could not be parsed, such
	// as a malformed pagination token.
	ErrInvalidInput = errors.New("invalid input")
)

// RateLimitError is returned when a quota check rejects an action. Reason is
// the human-readable wait estimate and must be surfaced to callers verbatim.
type RateLimitError struct {
	Reason string
}

func (e *RateLimitError) Error() string { return e.Reason }

// UnknownAction wraps ErrUnknownAction with the offending action kind.
func UnknownAction(action string) error {
	return fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

// RateLimitExceeded creates a RateLimitError carrying the given reason.
func RateLimitExceeded(reason string) error {
	return &RateLimitError{Reason: reason}
}
