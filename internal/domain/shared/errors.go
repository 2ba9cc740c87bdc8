package shared

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
	ErrNotFound              = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists         = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput          = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict   = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState          = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock     = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInvalidReceiptQty     = NewDomainError("INVALID_RECEIPT_QUANTITY", "Received quantity would exceed ordered quantity")
	ErrOrderStateConflict    = NewDomainError("ORDER_STATE_CONFLICT", "Order state does not allow this operation")
	ErrInvalidOrderOperation = NewDomainError("INVALID_ORDER_OPERATION", "Operation does not apply to this order")
	ErrDuplicateSubmission   = NewDomainError("DUPLICATE_SUBMISSION", "This request was already processed")
)
