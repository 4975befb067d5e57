package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error for HTTP mapping and retry policy.
type ErrorType string

const (
	// Caller errors
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeMissingParameter ErrorType = "MISSING_PARAMETER"
	ErrorTypeInvalidCursor    ErrorType = "INVALID_CURSOR"
	ErrorTypeValidation       ErrorType = "VALIDATION"
	ErrorTypeUnauthorized     ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden        ErrorType = "FORBIDDEN"

	// Conflict: a storage-level condition (status gate) rejected the write.
	ErrorTypePreconditionFailed ErrorType = "PRECONDITION_FAILED"

	// Storage errors
	ErrorTypeMalformedKey       ErrorType = "MALFORMED_KEY"
	ErrorTypeTransactionAborted ErrorType = "TRANSACTION_ABORTED"
	ErrorTypeUnavailable        ErrorType = "UNAVAILABLE"
	ErrorTypeUnknown            ErrorType = "UNKNOWN"
)

// AppError is the single error shape crossing layer boundaries. Repositories
// translate store failures into it; handlers map it to an HTTP response.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches structured context for logging and API responses.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Retryable reports whether the caller may retry the failed operation.
// Condition-gate conflicts are concurrent-modification signals and must not
// be retried blindly; transient storage faults may be.
func (e *AppError) Retryable() bool {
	return e.Type == ErrorTypeUnavailable
}

// NewNotFound reports a keyed lookup miss.
func NewNotFound(resource, id string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s %q not found", resource, id),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewPreconditionFailed reports a condition-expression rejection (status gate,
// concurrent modification). Maps to 409.
func NewPreconditionFailed(message string) *AppError {
	return &AppError{
		Type:       ErrorTypePreconditionFailed,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewMissingParameter reports that the caller omitted a filter the selected
// query branch requires.
func NewMissingParameter(name string) *AppError {
	return &AppError{
		Type:       ErrorTypeMissingParameter,
		Message:    fmt.Sprintf("required parameter %q is missing", name),
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidCursor reports a malformed caller-supplied pagination token.
// Never retried: a bad cursor is a stale or tampered client value.
func NewInvalidCursor(err error) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidCursor,
		Message:    "pagination cursor is malformed",
		Cause:      err,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewMalformedKey reports a composite sort key that does not decode. Keys are
// system-written, so this is a programmer-error class: logged, not retried.
func NewMalformedKey(key string, arity int) *AppError {
	return &AppError{
		Type:       ErrorTypeMalformedKey,
		Message:    fmt.Sprintf("composite key %q does not split into %d segments", key, arity),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewValidation reports invalid request input.
func NewValidation(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUnauthorized reports a missing or invalid session.
func NewUnauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden reports an authenticated caller acting outside its role.
func NewForbidden(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return &AppError{
		Type:       ErrorTypeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewTransactionAborted reports an atomic multi-item write that failed for a
// reason other than the gate condition. The store does not make sub-item
// attribution economical, so the whole operation reads as not-applied.
func NewTransactionAborted(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeTransactionAborted,
		Message:    fmt.Sprintf("transaction %q aborted", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewUnavailable reports a transient transport fault. Safe to retry with
// backoff by an outer policy.
func NewUnavailable(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    fmt.Sprintf("storage operation %q failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewUnknown wraps an unmapped store response. Logged with full context at the
// boundary, flattened to a generic message for the caller.
func NewUnknown(operation string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnknown,
		Message:    fmt.Sprintf("operation %q failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Get extracts an AppError from an error chain, or nil.
func Get(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks the classification of an error.
func IsType(err error, errType ErrorType) bool {
	appErr := Get(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFound reports whether err is a keyed lookup miss.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsPreconditionFailed reports whether err is a condition-gate rejection.
func IsPreconditionFailed(err error) bool {
	return IsType(err, ErrorTypePreconditionFailed)
}

// IsInvalidCursor reports whether err is a malformed pagination token.
func IsInvalidCursor(err error) bool {
	return IsType(err, ErrorTypeInvalidCursor)
}

// IsUnavailable reports whether err is a retryable transport fault.
func IsUnavailable(err error) bool {
	return IsType(err, ErrorTypeUnavailable)
}
