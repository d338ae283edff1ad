package core

import (
	"errors"
	"fmt"
)

// Kind classifies an authentication or resource error so that the
// transport layer can map it to a stable wire code without inspecting
// error strings.
type Kind string

const (
	KindMissingCredentials Kind = "MissingCredentials"
	KindInvalidSignature   Kind = "InvalidSignature"
	KindStorageUnavailable Kind = "StorageUnavailable"
	KindInvalidCredential  Kind = "InvalidOrExpiredCredential"
	KindUnauthorized       Kind = "Unauthorized"
	KindConfiguration      Kind = "Configuration"
	KindNotFound           Kind = "NotFound"
	KindInvalidInput       Kind = "InvalidInput"
)

// Error carries a kind alongside a user-presentable message and an
// optional cause. Raw causes never cross the transport boundary.
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

// E creates a new error of the given kind.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new error of the given kind around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the kind from an error chain. Errors that were never
// classified report an empty kind and are treated as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the presentable message from a classified error, or a
// generic fallback for anything else.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
