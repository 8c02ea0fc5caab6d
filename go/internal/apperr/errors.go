package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API-visible failure.
type Kind int

const (
	Validation Kind = iota + 1
	Unauthorized
	NotFound
	Conflict
	Forbidden
	RateLimited
)

// Error is an API error carried from the app layer up to the HTTP handlers.
// Anything that is not an *Error is treated as an internal fault (500).
type Error struct {
	Kind    Kind
	Message string

	// RetryAfterSec is set on RateLimited errors only.
	RetryAfterSec int
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return New(Validation, format, args...)
}

func Unauthorizedf(format string, args ...any) *Error {
	return New(Unauthorized, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

func Conflictf(format string, args ...any) *Error {
	return New(Conflict, format, args...)
}

func Forbiddenf(format string, args ...any) *Error {
	return New(Forbidden, format, args...)
}

func RateLimitedf(retryAfterSec int, format string, args ...any) *Error {
	e := New(RateLimited, format, args...)
	e.RetryAfterSec = retryAfterSec
	return e
}

// As unwraps err into an *Error if it is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// HTTPStatus maps an error to the status code it should be served with.
func HTTPStatus(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
