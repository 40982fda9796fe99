package errors

import (
	"errors"
	"net/http"
)

// ErrorWithStatusCode carries the HTTP status a handler should answer with.
// Errors without one are treated as internal (500) at the handler level.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// New is a convenience constructor used by storage and service layers.
func New(message string, statusCode int) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: message, StatusCode: statusCode}
}

// StatusCode extracts the HTTP status from err, or 0 when it carries none.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
