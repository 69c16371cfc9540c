package worktime

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid transition")
)

// Error carries a human-readable reason for a rejected operation. Kind is
// ErrValidation for user-correctable input and ErrInvalidTransition for
// operations issued in the wrong state.
type Error struct {
	Kind error
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func invalidf(op, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func transitionf(op, format string, args ...any) error {
	return &Error{Kind: ErrInvalidTransition, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a user-correctable validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }
