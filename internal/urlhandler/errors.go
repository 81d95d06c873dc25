package urlhandler

import (
	"fmt"
)

// Error represents a general error in the urlhandler library.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new general Error.
func NewError(message string) error {
	return &Error{Message: message}
}

// WrapError wraps an existing error with a message.
func WrapError(err error, message string) error {
	return &Error{Message: message, Err: err}
}

var (
	// ErrEmptyURL is returned for blank input.
	ErrEmptyURL = NewError("URL is empty or only whitespace")
	// ErrMissingHost is returned when a URL parses but has no host.
	ErrMissingHost = NewError("URL lacks a valid hostname")
)
