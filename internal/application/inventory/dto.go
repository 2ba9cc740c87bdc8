package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
)

// StockAdjustmentRequest represents an internal stock increase or
// decrease. The reference type defaults to ADJUSTMENT; callers booking
// a return or transfer set referenceType and referenceId explicitly.
type StockAdjustmentRequest struct {
	Quantity      int        `json:"quantity" binding:"required,gt=0"`
	ReferenceType string     `json:"referenceType"`
	ReferenceID   *uuid.UUID `json:"referenceId"`
	SourceSystem  string     `json:"sourceSystem" binding:"max=50"`
	Notes         string     `json:"notes" binding:"max=500"`
}

// MovementListFilter represents filter options for the movement history
type MovementListFilter struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	MovementType  string     `json:"movement_type"`
	Quantity      int        `json:"quantity"`
	BalanceBefore int        `json:"balance_before"`
	BalanceAfter  int        `json:"balance_after"`
	ReferenceType *string    `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	SourceSystem  string     `json:"source_system,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToMovementResponse converts a domain StockMovement to a response DTO
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	var refType *string
	if m.ReferenceType != nil {
		s := string(*m.ReferenceType)
		refType = &s
	}
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		MovementType:  string(m.MovementType),
		Quantity:      m.Quantity,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		ReferenceType: refType,
		ReferenceID:   m.ReferenceID,
		SourceSystem:  m.SourceSystem,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of domain StockMovements to response DTOs
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses
}

// Deduction result statuses
const (
	DeductionStatusSuccess = "SUCCESS"
	DeductionStatusError   = "ERROR"
)

// StockDeductionRequest represents a deduction request from an external system
type StockDeductionRequest struct {
	ProductCode  string `json:"productCode" binding:"required,max=50"`
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
	SourceSystem string `json:"sourceSystem" binding:"max=50"`
	Notes        string `json:"notes" binding:"max=500"`
}

// StockDeductionResult is the outcome of an external deduction request.
// Insufficient stock is reported through the Status and Message fields
// rather than an error so integrators can branch on the status field.
type StockDeductionResult struct {
	ProductCode      string     `json:"productCode"`
	ProductName      string     `json:"productName,omitempty"`
	QuantityDeducted int        `json:"quantityDeducted,omitempty"`
	PreviousStock    int        `json:"previousStock,omitempty"`
	CurrentStock     int        `json:"currentStock,omitempty"`
	SourceSystem     string     `json:"sourceSystem,omitempty"`
	MovementID       *uuid.UUID `json:"movementId,omitempty"`
	Status           string     `json:"status"`
	Message          string     `json:"message,omitempty"`
	Timestamp        time.Time  `json:"timestamp"`
}
