// Package apperr defines the application error type used across lapse.
package apperr

import "fmt"

// Error is an application error whose Message may be a printf-style
// template filled in later with Fmt.
type Error struct {
	Message string
	parent  *Error
}

func (e *Error) Error() string {
	return e.Message
}

// Fmt returns a copy of the error with its message template filled in.
// The copy still matches the original sentinel with errors.Is.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(e.Message, args...),
		parent:  e,
	}
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	for p := e; p != nil; p = p.parent {
		if p == t {
			return true
		}
	}

	return false
}
