package order

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrCartNotFound  = errors.New("cart not found")
	ErrItemNotFound  = errors.New("order item not found")
)

// ValidationError rejects malformed input before any mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvalidStateError rejects an operation that is illegal in the order's
// current status: a forbidden transition, item mutation outside PENDING,
// an amount-consistency failure, or cross-customer access.
type InvalidStateError struct {
	Current Status
	Target  Status
	Message string
}

func (e *InvalidStateError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("invalid order state: cannot transition from %s to %s", e.Current, e.Target)
	}
	return fmt.Sprintf("invalid order state: %s", e.Message)
}

func newTransitionError(current, target Status) *InvalidStateError {
	return &InvalidStateError{Current: current, Target: target}
}

func newStateError(current Status, message string) *InvalidStateError {
	return &InvalidStateError{Current: current, Message: message}
}
