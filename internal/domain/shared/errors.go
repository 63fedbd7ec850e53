package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError so callers can branch without parsing messages
type ErrorKind string

const (
	KindValidation         ErrorKind = "VALIDATION"
	KindReferenceNotFound  ErrorKind = "REFERENCE_NOT_FOUND"
	KindConflict           ErrorKind = "CONFLICT"
	KindInsufficientStock  ErrorKind = "INSUFFICIENT_STOCK"
	KindStateTransition    ErrorKind = "STATE_TRANSITION"
	KindInvariantViolation ErrorKind = "INVARIANT_VIOLATION"
	KindInternal           ErrorKind = "INTERNAL"
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	return string(k)
}

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	// Line is the 1-based index of the offending batch line, 0 when not line specific
	Line  int    `json:"line,omitempty"`
	Field string `json:"field,omitempty"`
	Err   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by kind and code so sentinels work with errors.Is
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// AtLine returns a copy of the error bound to a 1-based batch line
func (e *DomainError) AtLine(line int) *DomainError {
	cp := *e
	cp.Line = line
	return &cp
}

// WithField returns a copy of the error naming the offending field
func (e *DomainError) WithField(field string) *DomainError {
	cp := *e
	cp.Field = field
	return &cp
}

// Wrap returns a copy of the error carrying cause as its underlying error
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.Err = cause
	return &cp
}

// NewDomainError creates a new domain error of the given kind
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an error for malformed or out-of-range input
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// NewReferenceNotFoundError creates an error for a missing or inactive referenced record
func NewReferenceNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindReferenceNotFound, code, message)
}

// NewConflictError creates an error for duplicates and uniqueness collisions
func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

// NewInsufficientStockError creates an error for demand exceeding supply
func NewInsufficientStockError(code, message string) *DomainError {
	return NewDomainError(KindInsufficientStock, code, message)
}

// NewStateTransitionError creates an error for a disallowed status transition
func NewStateTransitionError(code, message string) *DomainError {
	return NewDomainError(KindStateTransition, code, message)
}

// NewInvariantViolationError creates an error for a broken business invariant
func NewInvariantViolationError(code, message string) *DomainError {
	return NewDomainError(KindInvariantViolation, code, message)
}

// KindOf returns the kind of the first DomainError in err's chain, or KindInternal
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries a DomainError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Common domain errors
var (
	ErrNotFound          = NewReferenceNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists     = NewConflictError("ALREADY_EXISTS", "Resource already exists")
	ErrInsufficientStock = NewInsufficientStockError("INSUFFICIENT_STOCK", "Insufficient stock available")
)
