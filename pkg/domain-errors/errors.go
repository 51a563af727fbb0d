// Package derrors defines coded domain errors shared across services.
//
// Stores report infrastructure facts with pkg/platform/sentinel errors;
// services translate those into coded errors here so transport layers can map
// them to HTTP statuses without inspecting error strings.
package derrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. Codes are part of the API contract: the
// transport layer serializes them verbatim in error envelopes.
type Code string

const (
	// CodeValidation covers malformed input, e.g. an unparsable purchase price.
	CodeValidation Code = "validation_error"
	// CodeNotFound covers lookups of unknown asset/issuance/user ids.
	CodeNotFound Code = "not_found"
	// CodeConflict covers ledger-level duplicate open issuances.
	CodeConflict Code = "conflict"
	// CodePreconditionFailed covers coordinator-level gates: asset not active,
	// not unassigned, or deletion blocked by an open issuance.
	CodePreconditionFailed Code = "precondition_failed"
	// CodeInvalidState covers transitions on records not currently in the
	// required stored state, e.g. returning an already-returned issuance.
	CodeInvalidState Code = "invalid_state"

	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeInternal     Code = "internal_error"
)

// Error carries a code plus a human-readable detail string. The caller is
// responsible for user-facing presentation.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and detail message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted detail message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/errors.As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// HasCode is an alias for Is kept for call-site readability.
func HasCode(err error, code Code) bool { return Is(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the detail message from err without the code prefix.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a domain error code to an HTTP status for the transport
// layer. Keeping the mapping here ensures one envelope shape everywhere.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodePreconditionFailed:
		return http.StatusUnprocessableEntity
	case CodeInvalidState:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
