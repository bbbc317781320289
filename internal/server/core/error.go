package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrValidation        = "VALIDATION_FAILED"
	ErrUnknownOperation  = "UNKNOWN_OPERATION"
	ErrNotFound          = "NOT_FOUND"
	ErrConflict          = "CONFLICT"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInternalError     = "INTERNAL_ERROR"
)

// Kind is the failure class of an Error; it decides the HTTP status
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Status maps the kind to its HTTP status code
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a caller-visible failure. Err keeps the cause for server-side logs
// and is never sent to clients.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details string
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

// Response renders the failure envelope
func (e *Error) Response() ErrorResponse {
	return ErrorResponse{
		OK:      false,
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// ErrorResponse is the failure envelope written by every route
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Validation reports a missing or malformed field
func Validation(message, details string) *Error {
	return &Error{Kind: KindValidation, Code: ErrValidation, Message: message, Details: details}
}

// InvalidRequest reports a body that could not be decoded
func InvalidRequest(err error) *Error {
	e := &Error{Kind: KindValidation, Code: ErrInvalidRequest, Message: "invalid request body", Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

// UnknownOperation reports an unrecognised op name
func UnknownOperation(op string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    ErrUnknownOperation,
		Message: "unknown operation",
		Details: fmt.Sprintf("op %q is not supported", op),
	}
}

// NotFound reports a missing target or parent
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Code: ErrNotFound, Message: what + " not found"}
}

// Conflict reports a uniqueness or dependency clash
func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Code: ErrConflict, Message: message, Err: err}
}

// Unauthorized reports a missing session
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Code: ErrUnauthorized, Message: "unauthorized"}
}

// Internal hides err behind a generic message
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: ErrInternalError, Message: "internal server error", Err: err}
}

// AsError converts any error into an *Error, treating unknown errors as internal
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
