package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypePrecondition = "precondition_failed"
	ErrorTypeInvalidState = "invalid_state"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// ValidationError indicates malformed or missing required input, e.g. promoting
// a booking that has no service reference. Not retryable without correction.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
	}
	return "validation failed: " + e.Reason
}

// NewValidationError creates a ValidationError for a specific field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// PreconditionError indicates a state invariant is not met, e.g. accepting a
// quote without a signature. Requires caller correction, never silent retry.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// NewPreconditionError creates a PreconditionError
func NewPreconditionError(reason string) *PreconditionError {
	return &PreconditionError{Reason: reason}
}

// InvalidStateError indicates an operation that is not legal for the entity's
// current lifecycle state, e.g. logging time against an invoiced job.
type InvalidStateError struct {
	Entity    string
	Current   string
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s in state %s does not allow %s", e.Entity, e.Current, e.Operation)
}

// NewInvalidStateError creates an InvalidStateError
func NewInvalidStateError(entity, current, operation string) *InvalidStateError {
	return &InvalidStateError{Entity: entity, Current: current, Operation: operation}
}

// ConcurrentModificationError indicates that a conditional status write found
// the row already transitioned by another actor. Always retryable after a
// re-fetch of current state.
type ConcurrentModificationError struct {
	Entity string
	ID     uuid.UUID
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently", e.Entity, e.ID)
}

// NewConcurrentModificationError creates a ConcurrentModificationError
func NewConcurrentModificationError(entity string, id uuid.UUID) *ConcurrentModificationError {
	return &ConcurrentModificationError{Entity: entity, ID: id}
}

// ReconciliationError indicates that totals computed from two entities diverge
// beyond the rounding tolerance (1 SEK). Surfaced to admin for manual review,
// never silently corrected.
type ReconciliationError struct {
	Source   string
	Expected int64
	Actual   int64
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation mismatch against %s: expected %d SEK, got %d SEK", e.Source, e.Expected, e.Actual)
}

// NewReconciliationError creates a ReconciliationError
func NewReconciliationError(source string, expected, actual int64) *ReconciliationError {
	return &ReconciliationError{Source: source, Expected: expected, Actual: actual}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsPrecondition reports whether err is (or wraps) a PreconditionError
func IsPrecondition(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}

// IsInvalidState reports whether err is (or wraps) an InvalidStateError
func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

// IsConcurrentModification reports whether err is (or wraps) a ConcurrentModificationError
func IsConcurrentModification(err error) bool {
	var target *ConcurrentModificationError
	return errors.As(err, &target)
}

// IsReconciliation reports whether err is (or wraps) a ReconciliationError
func IsReconciliation(err error) bool {
	var target *ReconciliationError
	return errors.As(err, &target)
}
