package errors

import (
	"errors"
	"net/http"
)

type Exception struct {
	Message    string
	StatusCode int
	Cause      error
}

func (e *Exception) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Exception) Unwrap() error {
	return e.Cause
}

// Is matches exceptions by status and message so a wrapped copy still
// compares equal to the sentinel it was built from.
func (e *Exception) Is(target error) bool {
	var t *Exception
	if !errors.As(target, &t) {
		return false
	}
	return e.StatusCode == t.StatusCode && e.Message == t.Message
}

// Wrap attaches a cause to a sentinel exception.
func Wrap(base *Exception, cause error) *Exception {
	return &Exception{
		Message:    base.Message,
		StatusCode: base.StatusCode,
		Cause:      cause,
	}
}

func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
