package trade

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// OrderStateConflictError is returned when an operation is attempted
// against an order whose status does not allow it, for example
// receiving against a cancelled or completed order.
type OrderStateConflictError struct {
	OrderID uuid.UUID
	Status  PurchaseOrderStatus
}

// Error implements the error interface
func (e *OrderStateConflictError) Error() string {
	return fmt.Sprintf("order %s in status %s does not allow this operation", e.OrderID, e.Status)
}

// NewOrderStateConflictError creates a new OrderStateConflictError
func NewOrderStateConflictError(orderID uuid.UUID, status PurchaseOrderStatus) *OrderStateConflictError {
	return &OrderStateConflictError{OrderID: orderID, Status: status}
}

// InvalidReceiptQuantityError is returned when a receipt would push a
// line's received quantity above its ordered quantity, or when the
// requested quantity is not positive.
type InvalidReceiptQuantityError struct {
	LineID    uuid.UUID
	Ordered   int
	Received  int
	Requested int
}

// Error implements the error interface
func (e *InvalidReceiptQuantityError) Error() string {
	return fmt.Sprintf("invalid receipt quantity %d for line %s: ordered %d, already received %d",
		e.Requested, e.LineID, e.Ordered, e.Received)
}

// NewInvalidReceiptQuantityError creates a new InvalidReceiptQuantityError
func NewInvalidReceiptQuantityError(lineID uuid.UUID, ordered, received, requested int) *InvalidReceiptQuantityError {
	return &InvalidReceiptQuantityError{
		LineID:    lineID,
		Ordered:   ordered,
		Received:  received,
		Requested: requested,
	}
}

// InvalidOrderOperationError is returned when a batch references a line
// that does not belong to the targeted order.
type InvalidOrderOperationError struct {
	OrderID uuid.UUID
	Reason  string
}

// Error implements the error interface
func (e *InvalidOrderOperationError) Error() string {
	return fmt.Sprintf("invalid operation on order %s: %s", e.OrderID, e.Reason)
}

// NewInvalidOrderOperationError creates a new InvalidOrderOperationError
func NewInvalidOrderOperationError(orderID uuid.UUID, reason string) *InvalidOrderOperationError {
	return &InvalidOrderOperationError{OrderID: orderID, Reason: reason}
}

// AsOrderStateConflict returns the typed error if err is (or wraps) an
// OrderStateConflictError
func AsOrderStateConflict(err error) (*OrderStateConflictError, bool) {
	var target *OrderStateConflictError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// AsInvalidReceiptQuantity returns the typed error if err is (or wraps)
// an InvalidReceiptQuantityError
func AsInvalidReceiptQuantity(err error) (*InvalidReceiptQuantityError, bool) {
	var target *InvalidReceiptQuantityError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// AsInvalidOrderOperation returns the typed error if err is (or wraps)
// an InvalidOrderOperationError
func AsInvalidOrderOperation(err error) (*InvalidOrderOperationError, bool) {
	var target *InvalidOrderOperationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
