// Package apperr defines the closed set of failures the service can report and
// the single place where they are translated into HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindDuplicateUser    Kind = "DUPLICATE_USER"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidSender    Kind = "INVALID_SENDER"
	KindInvalidRecipient Kind = "INVALID_RECIPIENT"
	KindEmptyBody        Kind = "EMPTY_BODY"
	KindInternal         Kind = "INTERNAL"
)

// Error is a typed failure. Message is safe to return to clients; Cause is not.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func InvalidInput(msg string) error { return New(KindInvalidInput, msg) }

func Unauthorized(msg string) error { return New(KindUnauthorized, msg) }

func NotFound(msg string) error { return New(KindNotFound, msg) }

func Internal(cause error) error { return Wrap(KindInternal, "internal server error", cause) }

// Sentinels for errors.Is checks. Messages are the ones clients see.
var (
	ErrInvalidInput     = New(KindInvalidInput, "invalid input")
	ErrDuplicateUser    = New(KindDuplicateUser, "username already taken")
	ErrUnauthorized     = New(KindUnauthorized, "Unauthorized")
	ErrNotFound         = New(KindNotFound, "not found")
	ErrInvalidSender    = New(KindInvalidSender, "sender does not exist")
	ErrInvalidRecipient = New(KindInvalidRecipient, "recipient does not exist")
	ErrEmptyBody        = New(KindEmptyBody, "message body is required")
)

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Status maps err onto the HTTP status the boundary layer responds with.
func Status(err error) int {
	switch KindOf(err) {
	case KindInvalidInput, KindDuplicateUser, KindInvalidSender, KindInvalidRecipient, KindEmptyBody:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-safe message for err.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}
