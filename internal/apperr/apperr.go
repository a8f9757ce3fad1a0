// SPDX-License-Identifier: Apache-2.0

// Package apperr defines the application-wide error taxonomy and the single
// normalization boundary through which every failure passes before a
// response is emitted.
//
// Errors are split into two groups. Operational errors are expected,
// user-facing failures (bad input, not found, unauthorized) that are safe to
// describe precisely. Everything else is a defect: it is normalized to an
// internal error and its details must never reach a production client.
package apperr

import (
	"errors"
	"net/http"
)

// Error statuses as rendered in the response envelope: "fail" for 4xx,
// "error" for 5xx.
const (
	StatusFail  = "fail"
	StatusError = "error"
)

// genericMessage is the only thing a production client learns about a defect.
const genericMessage = "something went very wrong"

// Error is the normalized application error. Each classified failure kind is
// constructed through one of the typed constructors below so that every kind
// carries exactly the fields it needs.
type Error struct {
	// Code is the HTTP status code the error maps to.
	Code int

	// Status is "fail" for 4xx codes and "error" for 5xx codes.
	Status string

	// Message is the user-facing description. For operational errors it is
	// precise; for defects it is only shown in development.
	Message string

	// Op marks the error as operational (expected, safe to describe).
	Op bool

	// Err is the underlying cause, if any. Preserved for logging and for
	// development-mode rendering; never serialized in production.
	Err error

	// Stack is the goroutine stack captured at construction. Rendered in
	// development only.
	Stack string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an operational error with the given HTTP status code and
// message. Status is derived from the code.
func New(code int, message string) *Error {
	return &Error{
		Code:    code,
		Status:  statusFor(code),
		Message: message,
		Op:      true,
		Stack:   captureStack(),
	}
}

func statusFor(code int) string {
	if code >= http.StatusInternalServerError {
		return StatusError
	}
	return StatusFail
}

// Unauthenticated builds a 401 for requests without a usable credential.
func Unauthenticated(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// Forbidden builds a 403 for authenticated principals lacking the required role.
func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

// NotFound builds a 404 for absent resources.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// ValidationFailed builds a 400 for rejected input. message is the joined
// field-level description.
func ValidationFailed(message string) *Error {
	return New(http.StatusBadRequest, "invalid input data: "+message)
}

// DuplicateValue builds a 400 for uniqueness-constraint violations.
func DuplicateValue(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// InvalidIdentifier builds a 400 for malformed identifiers that the store
// layer could not cast to the column type.
func InvalidIdentifier(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// InvalidToken builds the fixed 401 for malformed or tampered credentials.
func InvalidToken() *Error {
	return Unauthenticated("invalid token, please log in again")
}

// TokenExpired builds the fixed 401 for credentials past their expiry.
func TokenExpired() *Error {
	return Unauthenticated("your token has expired, please log in again")
}

// InvalidOrExpiredResetToken builds the fixed 400 used when a password-reset
// token does not match any pending reset or its window has passed. The two
// cases are deliberately indistinguishable to the caller.
func InvalidOrExpiredResetToken() *Error {
	return New(http.StatusBadRequest, "token is invalid or has expired")
}

// Internal wraps a defect. It is not operational: production rendering
// replaces the message with a fixed generic one.
func Internal(err error) *Error {
	return &Error{
		Code:    http.StatusInternalServerError,
		Status:  StatusError,
		Message: genericMessage,
		Op:      false,
		Err:     err,
		Stack:   captureStack(),
	}
}

// IsOperational reports whether err normalizes to an operational error.
func IsOperational(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Op
	}
	return false
}
