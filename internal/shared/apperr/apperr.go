package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindForbidden    Kind = "Forbidden"
	KindConflict     Kind = "Conflict"
	KindValidation   Kind = "Validation"
	KindUnauthorized Kind = "Unauthorized"
	KindStorage      Kind = "Storage"
	KindExtraction   Kind = "Extraction"
	KindInternal     Kind = "Internal"
)

var statusByKind = map[Kind]int{
	KindNotFound:     http.StatusNotFound,
	KindForbidden:    http.StatusForbidden,
	KindConflict:     http.StatusConflict,
	KindValidation:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindStorage:      http.StatusInternalServerError,
	KindExtraction:   http.StatusUnprocessableEntity,
	KindInternal:     http.StatusInternalServerError,
}

// Error carries a public message and the underlying cause.
type Error struct {
	Kind     Kind
	Message  string
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error  { return New(KindNotFound, message) }
func Forbidden(message string) *Error { return New(KindForbidden, message) }
func Conflict(message string) *Error  { return New(KindConflict, message) }

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// Validation builds a validation error with one or more messages.
func Validation(messages ...string) *Error {
	e := &Error{Kind: KindValidation, Messages: messages}
	if len(messages) > 0 {
		e.Message = messages[0]
	}
	return e
}

func Storage(err error) *Error {
	return Wrap(KindStorage, err, "storage operation failed")
}

func Internal(err error) *Error {
	return Wrap(KindInternal, err, "internal error")
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	typed, ok := As(err)
	return ok && typed.Kind == kind
}
