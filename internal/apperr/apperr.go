// Package apperr defines the error taxonomy shared by the repository,
// service, and handler layers. Every user-visible failure carries a stable
// code so callers can tell "nothing happened" (validation, quota, not found)
// apart from "rolled back" (persistence) and "cleanup uncertain" (storage).
package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound        Code = "not_found"
	CodeValidation      Code = "validation"
	CodeQuotaExceeded   Code = "quota_exceeded"
	CodeUnsupportedType Code = "unsupported_type"
	CodeTooLarge        Code = "too_large"
	CodePersistence     Code = "persistence"
	CodeStorage         Code = "storage"
	CodeUnauthorized    Code = "unauthorized"
)

type Error struct {
	Code    Code
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, keeping the cause
// reachable via errors.Unwrap.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, err: err}
}

// CodeOf extracts the code from err, or empty if err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
