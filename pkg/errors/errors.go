package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden  = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrConflict   = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss  = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Remedial attendance outcomes. Each submission failure is a distinct
// user-facing result, never an opaque 500.
var (
	ErrCodeMalformed = New("CODE_MALFORMED", http.StatusBadRequest, "please enter a valid 6-character code")
	ErrCodeInvalid   = New("CODE_INVALID", http.StatusNotFound, "invalid code, please check and try again")
	ErrCodeNotActive = New("CODE_NOT_ACTIVE", http.StatusConflict, "code is not active yet")
	ErrCodeExpired   = New("CODE_EXPIRED", http.StatusGone, "code has expired")
	ErrNotEnrolled   = New("NOT_ENROLLED", http.StatusForbidden, "you are not enrolled in this course")
	ErrAlreadyMarked = New("ALREADY_MARKED", http.StatusConflict, "attendance already marked for this session")
)

// Session lifecycle errors.
var (
	ErrSessionNotFound  = New("SESSION_NOT_FOUND", http.StatusNotFound, "make-up session not found")
	ErrSessionFinalized = New("SESSION_FINALIZED", http.StatusConflict, "session is already completed or cancelled")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
