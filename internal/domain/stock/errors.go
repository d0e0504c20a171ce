package stock

import (
	"errors"
	"fmt"
)

var ErrStockNotFound = errors.New("stock not found")

// InsufficientStockError is raised when a requested quantity exceeds what a
// stock record can currently provide.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// ValidationError rejects malformed stock input before any mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
