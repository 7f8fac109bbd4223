// Package apperr defines the typed failures returned by account operations.
//
// Services return these as plain errors; the HTTP layer is the only place that
// turns them into status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Error carries an HTTP status and a client-safe message. Cause is for
// server-side logging and is never sent to clients.
type Error struct {
	Status  int
	Message string
	Cause   error
	Details []string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func Validation(msg string, details ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Details: details}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

func TooManyRequests(msg string) *Error {
	return &Error{Status: http.StatusTooManyRequests, Message: msg}
}

// Internal wraps an unexpected failure. msg is shown to the client.
func Internal(msg string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Cause: cause}
}

// As extracts the *Error from err's chain, or nil.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
