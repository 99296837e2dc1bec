// Package apperr defines the error kinds surfaced to API clients.
// Services return these typed errors and the HTTP layer maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindInternal is an unexpected failure. Its details are never shown to clients.
	KindInternal Kind = iota
	// KindInvalidToken means the shared secret was missing or wrong.
	KindInvalidToken
	// KindMalformedInput means a required field was missing or could not be parsed.
	KindMalformedInput
	// KindUnresolvedReference means a named point of interest is not in the reference table.
	KindUnresolvedReference
	// KindProvider means the upstream geocoding or routing provider failed.
	KindProvider
	// KindInvalidGeometry means an encoded polyline could not be decoded.
	KindInvalidGeometry
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindInvalidToken:
		return "invalid_token"
	case KindMalformedInput:
		return "malformed_input"
	case KindUnresolvedReference:
		return "unresolved_reference"
	case KindProvider:
		return "provider_error"
	case KindInvalidGeometry:
		return "invalid_geometry"
	default:
		return "internal"
	}
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code for this error kind.
// Every client-caused and upstream failure is a 400, the token check is a 403.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidToken:
		return http.StatusForbidden
	case KindMalformedInput, KindUnresolvedReference, KindProvider, KindInvalidGeometry:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// InvalidToken creates the fixed authentication failure.
func InvalidToken() *Error {
	return New(KindInvalidToken, "Invalid Token")
}

// MalformedInput creates an input error naming the offending field.
func MalformedInput(field, reason string) *Error {
	return New(KindMalformedInput, fmt.Sprintf("invalid %s: %s", field, reason))
}

// MissingField creates an input error for an absent required field.
func MissingField(field string) *Error {
	return New(KindMalformedInput, "missing required field: "+field)
}

// UnresolvedReference creates the error for an unknown point of interest name.
func UnresolvedReference(name string) *Error {
	return New(KindUnresolvedReference, fmt.Sprintf("invalid point of interest: %q", name))
}

// Provider wraps an upstream failure.
func Provider(err error) *Error {
	return Wrap(KindProvider, "provider request failed", err)
}

// InvalidGeometry creates the polyline decoding failure.
func InvalidGeometry(err error) *Error {
	return Wrap(KindInvalidGeometry, "Invalid Polyline", err)
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return Wrap(KindInternal, "internal server error", err)
}

// GetKind extracts the error kind from anywhere in the error chain.
// Returns KindInternal if no *Error is found.
func GetKind(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is checks if err carries an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}

// PublicMessage returns the text shown to clients for err.
// Internal failures are reduced to a generic message.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		return "internal server error"
	}
	if appErr.Kind == KindInvalidGeometry || appErr.Kind == KindInvalidToken {
		return appErr.Message
	}
	return appErr.Error()
}

// StatusOf returns the HTTP status for any error, defaulting to 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
