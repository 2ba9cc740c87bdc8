package inventory

import (
	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeStockIncreased = "StockIncreased"
	EventTypeStockDecreased = "StockDecreased"
)

// StockIncreasedEvent is published when a product's stock goes up
type StockIncreasedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID      `json:"product_id"`
	ProductCode   string         `json:"product_code"`
	MovementID    uuid.UUID      `json:"movement_id"`
	Quantity      int            `json:"quantity"`
	BalanceBefore int            `json:"balance_before"`
	BalanceAfter  int            `json:"balance_after"`
	ReferenceType *ReferenceType `json:"reference_type,omitempty"`
	BelowMinimum  bool           `json:"below_minimum"`
}

// NewStockIncreasedEvent creates a new StockIncreasedEvent
func NewStockIncreasedEvent(product *catalog.Product, movement *StockMovement) *StockIncreasedEvent {
	return &StockIncreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIncreased, catalog.AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		ProductCode:     product.Code,
		MovementID:      movement.ID,
		Quantity:        movement.Quantity,
		BalanceBefore:   movement.BalanceBefore,
		BalanceAfter:    movement.BalanceAfter,
		ReferenceType:   movement.ReferenceType,
		BelowMinimum:    product.IsLowStock(),
	}
}

// StockDecreasedEvent is published when a product's stock goes down
type StockDecreasedEvent struct {
	shared.BaseDomainEvent
	ProductID     uuid.UUID      `json:"product_id"`
	ProductCode   string         `json:"product_code"`
	MovementID    uuid.UUID      `json:"movement_id"`
	Quantity      int            `json:"quantity"`
	BalanceBefore int            `json:"balance_before"`
	BalanceAfter  int            `json:"balance_after"`
	ReferenceType *ReferenceType `json:"reference_type,omitempty"`
	SourceSystem  string         `json:"source_system,omitempty"`
	BelowMinimum  bool           `json:"below_minimum"`
}

// NewStockDecreasedEvent creates a new StockDecreasedEvent
func NewStockDecreasedEvent(product *catalog.Product, movement *StockMovement) *StockDecreasedEvent {
	return &StockDecreasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockDecreased, catalog.AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		ProductCode:     product.Code,
		MovementID:      movement.ID,
		Quantity:        movement.Quantity,
		BalanceBefore:   movement.BalanceBefore,
		BalanceAfter:    movement.BalanceAfter,
		ReferenceType:   movement.ReferenceType,
		SourceSystem:    movement.SourceSystem,
		BelowMinimum:    product.IsLowStock(),
	}
}
