package service

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindNotFound
	KindConflict
)

// Status maps the kind to an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain failure with a message safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func BadRequest(message string) *Error {
	return newError(KindBadRequest, message)
}

// Internal hides the cause behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

var (
	ErrEmailInUse         = newError(KindConflict, "Email in use")
	ErrInvalidCredentials = newError(KindUnauthorized, "Email or password is wrong")
	ErrNotAuthorized      = newError(KindUnauthorized, "Not authorized")
	ErrEmailNotFound      = newError(KindUnauthorized, "Email not found")
	ErrUserNotFound       = newError(KindNotFound, "User not found")
	ErrNotFound           = newError(KindNotFound, "Not found")
	ErrAlreadyVerified    = newError(KindBadRequest, "Verification has already been passed")
	ErrMissingAvatar      = newError(KindBadRequest, "Avatar file is required")
)

// KindOf reports the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
