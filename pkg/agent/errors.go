package agent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies handler failures for envelope construction.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindMissingParameter
	KindUnsupportedEnum
	KindUpstreamUnavailable
	KindValidationFailed
)

// Error is the failure type every service in this repository returns. The
// message is what ends up in the envelope's error field, so it must be
// human-readable and must not carry stack traces.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// MissingParameter reports a required argument that was empty after
// extraction.
func MissingParameter(name string) *Error {
	return &Error{
		Kind:    KindMissingParameter,
		Message: fmt.Sprintf("Missing required parameter: %s", name),
	}
}

// UnsupportedEnum reports an enum argument outside its documented value set.
func UnsupportedEnum(param, got string, allowed []string) *Error {
	return &Error{
		Kind:    KindUnsupportedEnum,
		Message: fmt.Sprintf("Unsupported %s: %s. Supported: %s", param, got, strings.Join(allowed, ", ")),
	}
}

// Upstream wraps a data-provider failure after its retries are exhausted.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: msg, Err: err}
}

// ValidationFailed reports a request that was well-formed but refers to
// something that does not exist (for example an unknown ticker).
func ValidationFailed(msg string) *Error {
	return &Error{Kind: KindValidationFailed, Message: msg}
}

// Classify returns err when it already carries a kind, wrapping anything
// else as Internal. Handlers call it at the boundary so unexpected errors
// surface with the generic prefix instead of raw internals.
func Classify(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Internal wraps an unexpected error. The original error is preserved for
// logging; the envelope only shows the generic prefix plus the message.
func Internal(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf("Internal server error: %v", err),
	}
}
