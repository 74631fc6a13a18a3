// Package apperror is the error taxonomy shared by every module. Domain packages declare
// sentinel *Error values; the HTTP layer maps them to status codes and the response envelope.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindDuplicate    Kind = "duplicate"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindBadRequest   Kind = "bad_request"
	KindRateLimited  Kind = "rate_limited"
	KindInternal     Kind = "internal"
)

// Error carries a kind, the HTTP status to answer with and a client-facing message.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and message so wrapped copies still match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Wrap returns a copy of e that carries cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithStatus returns a copy of e answering with a different HTTP status.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

func New(kind Kind, status int, msg string) *Error {
	return &Error{Kind: kind, Status: status, Message: msg}
}

func Validation(msg string) *Error { return New(KindValidation, http.StatusUnprocessableEntity, msg) }
func Duplicate(msg string) *Error  { return New(KindDuplicate, http.StatusBadRequest, msg) }
func NotFound(msg string) *Error   { return New(KindNotFound, http.StatusBadRequest, msg) }
func BadRequest(msg string) *Error { return New(KindBadRequest, http.StatusBadRequest, msg) }
func Forbidden(msg string) *Error  { return New(KindForbidden, http.StatusForbidden, msg) }

func TooManyRequests(msg string) *Error {
	return New(KindRateLimited, http.StatusTooManyRequests, msg)
}

func Unauthorized(msg string) *Error {
	return New(KindUnauthorized, http.StatusUnauthorized, msg)
}

// Internal hides cause behind a generic message.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "something went wrong", Err: cause}
}

// From extracts an *Error from err, falling back to Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
