package service

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Backends wrap them in *Error so callers can use errors.Is.
var (
	// ErrInvalid indicates a rejected request (e.g. empty description).
	ErrInvalid = errors.New("invalid request")

	// ErrNotFound indicates the referenced item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAuth indicates missing, expired or revoked credentials.
	ErrAuth = errors.New("auth error")

	// ErrUnavailable indicates the backend could not be reached or timed out.
	ErrUnavailable = errors.New("backend unavailable")
)

// Error is the failure value of a service call. Message is what gets shown
// to the user; Err classifies the failure.
type Error struct {
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Err: kind}
}

// Message returns the user-facing message carried by err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
