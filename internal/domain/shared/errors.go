package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// NewValidationError creates a domain error for malformed input.
// Validation errors are raised before any state change and are never retried.
func NewValidationError(message string) *DomainError {
	return NewDomainError("VALIDATION_ERROR", message)
}

// NewBusinessError creates a domain error for valid input that conflicts
// with current state (e.g. a plan that already exists).
func NewBusinessError(message string) *DomainError {
	return NewDomainError("BUSINESS_RULE", message)
}

// NewNotFoundError creates a domain error for a missing entity.
func NewNotFoundError(message string) *DomainError {
	return NewDomainError("NOT_FOUND", message)
}

// NewConflictError creates a domain error for a concurrency conflict,
// distinct from BUSINESS_RULE so callers can tell "someone already did this"
// apart from "two requests raced".
func NewConflictError(message string) *DomainError {
	return NewDomainError("CONCURRENCY_CONFLICT", message)
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	return hasCode(err, "VALIDATION_ERROR")
}

// IsNotFoundError reports whether err is a not-found error.
func IsNotFoundError(err error) bool {
	return hasCode(err, "NOT_FOUND")
}

// IsBusinessError reports whether err is a business rule violation.
func IsBusinessError(err error) bool {
	return hasCode(err, "BUSINESS_RULE")
}

// IsConflictError reports whether err is a concurrency conflict.
func IsConflictError(err error) bool {
	return hasCode(err, "CONCURRENCY_CONFLICT") || hasCode(err, "OPTIMISTIC_LOCK_ERROR")
}

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
