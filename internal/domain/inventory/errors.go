package inventory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// InsufficientStockError is returned when a decrease would take a
// product's stock below zero. It carries enough detail for callers to
// report what was available versus what was requested.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductCode string
	Available   int
	Requested   int
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductCode, e.Available, e.Requested)
}

// NewInsufficientStockError creates a new InsufficientStockError
func NewInsufficientStockError(productID uuid.UUID, code string, available, requested int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID:   productID,
		ProductCode: code,
		Available:   available,
		Requested:   requested,
	}
}

// AsInsufficientStock returns the typed error if err is (or wraps) an
// InsufficientStockError
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var target *InsufficientStockError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
