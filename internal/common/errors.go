package common

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Failure kinds for the order-intake flow. Every failure aborts the whole
// atomic unit; none are partially recovered.
var (
	// ErrProductNotFound: referenced product missing or not owned by the
	// requesting tenant. Fatal to the request.
	ErrProductNotFound = errors.New("product not found")

	// ErrTenantMismatch: caller is not allowed to act for the tenant. Fatal,
	// no retry.
	ErrTenantMismatch = errors.New("tenant mismatch")

	// ErrOrderNotFound: referenced order missing for the tenant.
	ErrOrderNotFound = errors.New("order not found")

	// ErrStoreUnavailable: the atomic write could not commit due to an
	// infrastructure failure. The caller may retry the whole request.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// InsufficientInventoryError reports an oversell attempt: the requested
// quantity exceeded what was available at decrement time. Callers may retry
// with an adjusted quantity.
type InsufficientInventoryError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// ValidationError reports a missing or malformed input field. Fatal to the
// request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
