// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fhesdk

import "fmt"

// Error codes
const (
	CodeValidation int32 = iota + 1
	CodeMismatch
	CodeAuthorization
	CodeNetwork
)

var (
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrMismatch      = &Error{Code: CodeMismatch, Message: "handle count mismatch"}
	ErrAuthorization = &Error{Code: CodeAuthorization, Message: "authorization failed"}
	ErrNetwork       = &Error{Code: CodeNetwork, Message: "decryption call failed"}
)

// Error represents an fhesdk error
type Error struct {
	Code    int32
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so callers can test against
// the sentinel values with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewValidationError returns a validation error with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewAuthorizationError wraps a signing failure.
func NewAuthorizationError(msg string, err error) error {
	return &Error{Code: CodeAuthorization, Message: msg, Err: err}
}

// NewNetworkError wraps a decryption engine failure.
func NewNetworkError(msg string, err error) error {
	return &Error{Code: CodeNetwork, Message: msg, Err: err}
}

// MismatchError is returned when the engine yields a different number of
// handles than inputs were added to the builder.
type MismatchError struct {
	Inputs  int
	Handles int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("encryption engine returned %d handles for %d inputs", e.Handles, e.Inputs)
}

// Is reports whether target is ErrMismatch
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}
