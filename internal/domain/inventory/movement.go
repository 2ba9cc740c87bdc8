package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	// MovementTypeIn represents stock coming in (purchase receiving, return, positive adjustment)
	MovementTypeIn MovementType = "IN"
	// MovementTypeOut represents stock going out (sale, transfer, negative adjustment)
	MovementTypeOut MovementType = "OUT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	return t == MovementTypeIn || t == MovementTypeOut
}

// ReferenceType represents the business reason attached to a movement
type ReferenceType string

const (
	// ReferenceTypePurchaseOrder is a purchase order receipt
	ReferenceTypePurchaseOrder ReferenceType = "PURCHASE_ORDER"
	// ReferenceTypeSale is a deduction initiated by an external sales system
	ReferenceTypeSale ReferenceType = "SALE"
	// ReferenceTypeAdjustment is a manual stock correction
	ReferenceTypeAdjustment ReferenceType = "ADJUSTMENT"
	// ReferenceTypeTransfer is a transfer between locations
	ReferenceTypeTransfer ReferenceType = "TRANSFER"
	// ReferenceTypeReturn is a customer or supplier return
	ReferenceTypeReturn ReferenceType = "RETURN"
)

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// IsValid returns true if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypePurchaseOrder,
		ReferenceTypeSale,
		ReferenceTypeAdjustment,
		ReferenceTypeTransfer,
		ReferenceTypeReturn:
		return true
	}
	return false
}

// StockMovement is one immutable ledger entry recording a stock change
// for a product. Once created, movements are never updated or deleted;
// corrections are made with new movements. The running sum of signed
// quantities for a product always equals its current stock.
type StockMovement struct {
	shared.BaseEntity
	ProductID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_stock_movement_product"`
	MovementType  MovementType   `gorm:"type:varchar(10);not null;index:idx_stock_movement_type"`
	Quantity      int            `gorm:"not null;check:quantity > 0"`
	BalanceBefore int            `gorm:"not null"`
	BalanceAfter  int            `gorm:"not null"`
	ReferenceType *ReferenceType `gorm:"type:varchar(30);index:idx_stock_movement_reference"`
	ReferenceID   *uuid.UUID     `gorm:"type:uuid;index:idx_stock_movement_reference"`
	SourceSystem  string         `gorm:"type:varchar(50)"`
	Notes         string         `gorm:"type:varchar(500)"`
	CreatedBy     *uuid.UUID     `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new immutable stock movement
func NewStockMovement(
	productID uuid.UUID,
	movementType MovementType,
	quantity int,
	balanceBefore int,
	balanceAfter int,
) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Invalid movement type")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return &StockMovement{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		MovementType:  movementType,
		Quantity:      quantity,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
	}, nil
}

// WithReference sets the reference type and document id for the movement
func (m *StockMovement) WithReference(refType ReferenceType, refID *uuid.UUID) *StockMovement {
	m.ReferenceType = &refType
	m.ReferenceID = refID
	return m
}

// WithSourceSystem sets the originating external system label
func (m *StockMovement) WithSourceSystem(source string) *StockMovement {
	m.SourceSystem = source
	return m
}

// WithNotes sets free-form notes for the movement
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// WithActor sets the identity that performed the operation
func (m *StockMovement) WithActor(actorID uuid.UUID) *StockMovement {
	m.CreatedBy = &actorID
	return m
}

// WithOccurredAt overrides the movement timestamp
func (m *StockMovement) WithOccurredAt(at time.Time) *StockMovement {
	m.CreatedAt = at
	m.UpdatedAt = at
	return m
}

// SignedQuantity returns the quantity with its direction applied:
// positive for IN, negative for OUT
func (m *StockMovement) SignedQuantity() int {
	if m.MovementType == MovementTypeOut {
		return -m.Quantity
	}
	return m.Quantity
}
