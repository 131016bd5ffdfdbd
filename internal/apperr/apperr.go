package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies every failure that can reach a view. Handlers never look at
// remote HTTP status codes, only at the Kind.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAuthorization
	KindNetwork
	KindValidation
	KindBusinessRule
	KindNotImplemented
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindNotImplemented:
		return "not_implemented"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// User-facing messages shared by several layers.
const (
	MsgCannotReachServer  = "Cannot reach the server. Please try again later."
	MsgInvalidCredentials = "Invalid username or password."
	MsgRoleUnresolved     = "Your account role could not be determined. Please contact an administrator."
	MsgSessionExpired     = "Your session has expired. Please sign in again."
	MsgFeaturePending     = "This feature is not available yet."
	MsgInFlight           = "This request is already in progress."
)

// Error is the single error type views receive.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending input for validation failures.
	Field string
	// Status is the remote HTTP status when the error came from the API.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation builds a field-scoped validation error.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// KindOf reports the Kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the user-facing message of err. Foreign errors never leak
// their text.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Something went wrong. Please try again."
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
