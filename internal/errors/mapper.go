// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// HTTPStatus converts domain/repo/infra errors into an HTTP status code and a
// response message. Keeps handlers clean by centralizing error mapping.
func HTTPStatus(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var rle *RateLimitError

	switch {
	case errors.As(err, &rle):
		// reason is surfaced verbatim, callers show it to the user
		return http.StatusTooManyRequests, rle.Reason

	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, "user not found"

	case errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "record not found"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"

	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request was canceled"

	default:
		// fallback → bubble up error message for debugging
		return http.StatusInternalServerError, err.Error()
	}
}
