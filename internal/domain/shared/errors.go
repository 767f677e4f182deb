package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError carrying the same code, so
// errors.Is(err, ErrNotFound) holds for every not-found error regardless of message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes used across the reconciliation engine
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodePersistence         = "PERSISTENCE_ERROR"
	CodeInvalidState        = "INVALID_STATE"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeAlreadyIntegrated   = "ALREADY_INTEGRATED"
	CodeExceedsOutstanding  = "EXCEEDS_OUTSTANDING"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrPersistence         = NewDomainError(CodePersistence, "Storage operation failed")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrAlreadyIntegrated   = NewDomainError(CodeAlreadyIntegrated, "Expense is already linked to a ledger entry")
	ErrExceedsOutstanding  = NewDomainError(CodeExceedsOutstanding, "Payment exceeds the outstanding balance")
)

// NewValidationError reports a missing or invalid parameter. It is raised before any write.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewNotFoundError reports that a referenced record does not exist.
func NewNotFoundError(resource string, id fmt.Stringer) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id))
}

// NewPersistenceError wraps a failed store operation.
func NewPersistenceError(op string, cause error) *DomainError {
	return &DomainError{
		Code:    CodePersistence,
		Message: "failed to " + op,
		Cause:   cause,
	}
}

// NewConflictError reports a state conflict with the given code.
func NewConflictError(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// CodeOf returns the code of the first DomainError in err's chain, or "" when there is none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether err carries a DomainError with the given code
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
