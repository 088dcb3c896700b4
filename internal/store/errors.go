package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a persistence error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same status code, so a specific variant such
// as ErrQuestionNotFound still satisfies errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Code:    e.Code,
		Message: msg,
		Err:     e.Err,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}
)

// Entity-specific variants. All of them match their base sentinel with errors.Is.
var (
	ErrUserNotFound     = ErrNotFound.WithMessage("user not found")
	ErrQuestionNotFound = ErrNotFound.WithMessage("question not found")
	ErrAnswerNotFound   = ErrNotFound.WithMessage("answer not found")

	ErrUsernameTaken = ErrAlreadyExists.WithMessage("username already taken")
	ErrEmailTaken    = ErrAlreadyExists.WithMessage("email already in use")
)
