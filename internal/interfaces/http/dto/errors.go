package dto

import (
	"net/http"
	"strings"
)

// Error codes surfaced by the API. Domain errors carry the same codes,
// so the mapping below decides the HTTP status for each of them.
const (
	// ErrCodeInternal is used for unexpected server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound is used when a resource does not exist
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when a unique code or number is taken
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConcurrentModification is used when optimistic locking fails
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	// ErrCodeDuplicateSubmission is used when an idempotency key was already processed
	ErrCodeDuplicateSubmission = "DUPLICATE_SUBMISSION"
	// ErrCodeOrderStateConflict is used when an order's status forbids the operation
	ErrCodeOrderStateConflict = "ORDER_STATE_CONFLICT"
	// ErrCodeInsufficientStock is used when a decrease would take stock below zero
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// ErrCodeInvalidReceiptQuantity is used when a receipt would overflow a line
	ErrCodeInvalidReceiptQuantity = "INVALID_RECEIPT_QUANTITY"
	// ErrCodeInvalidOrderOperation is used when a batch references a foreign line
	ErrCodeInvalidOrderOperation = "INVALID_ORDER_OPERATION"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back to prefix-based classification.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeAlreadyExists:          http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,
	ErrCodeDuplicateSubmission:    http.StatusConflict,
	ErrCodeOrderStateConflict:     http.StatusConflict,
	"ALREADY_CONFIRMED":           http.StatusConflict,
	"ALREADY_ACTIVE":              http.StatusConflict,
	"ALREADY_INACTIVE":            http.StatusConflict,

	ErrCodeInsufficientStock:      http.StatusUnprocessableEntity,
	ErrCodeInvalidReceiptQuantity: http.StatusUnprocessableEntity,
	ErrCodeInvalidOrderOperation:  http.StatusUnprocessableEntity,
	"SUPPLIER_INACTIVE":           http.StatusUnprocessableEntity,
	"EMPTY_ORDER":                 http.StatusUnprocessableEntity,
	"EMPTY_BATCH":                 http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unmapped INVALID_* codes are treated as client input errors; anything
// else unmapped is an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
