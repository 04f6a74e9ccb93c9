package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP layer can pick a status code.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindInternal       Kind = "internal"
)

type Error struct {
	Kind    Kind
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

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, apperr.ErrAuthentication).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrNotFound       = &Error{Kind: KindNotFound}
)

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Authentication(message string) error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func Authorization(message string) error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func Conflict(message string, err error) error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func Internal(message string, err error) error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message carried by err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}
