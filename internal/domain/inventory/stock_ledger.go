package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

// MovementContext carries the optional attribution for a ledger posting
type MovementContext struct {
	ReferenceType *ReferenceType
	ReferenceID   *uuid.UUID
	SourceSystem  string
	Notes         string
	Actor         *uuid.UUID
	OccurredAt    *time.Time
}

// StockLedger owns the stock invariants for a product: current stock
// never goes negative, and every change is paired with exactly one
// immutable movement. The stock mutation and the returned movement must
// be persisted in the same unit of work; the ledger itself has no
// knowledge of orders or persistence.
type StockLedger struct{}

// NewStockLedger creates a new stock ledger service
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// Increase raises the product's stock by quantity and returns the
// matching IN movement. No upper bound is enforced here: over-stock is
// a reporting signal, not an error.
func (l *StockLedger) Increase(product *catalog.Product, quantity int, mctx MovementContext) (*StockMovement, error) {
	if product == nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product cannot be nil")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	balanceBefore := product.CurrentStock
	if err := product.AddStock(quantity); err != nil {
		return nil, err
	}

	movement, err := NewStockMovement(product.ID, MovementTypeIn, quantity, balanceBefore, product.CurrentStock)
	if err != nil {
		return nil, err
	}
	applyMovementContext(movement, mctx)

	product.AddDomainEvent(NewStockIncreasedEvent(product, movement))

	return movement, nil
}

// Decrease lowers the product's stock by quantity and returns the
// matching OUT movement. Fails with InsufficientStockError and performs
// no mutation when available stock is below the requested quantity.
func (l *StockLedger) Decrease(product *catalog.Product, quantity int, mctx MovementContext) (*StockMovement, error) {
	if product == nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product cannot be nil")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if product.CurrentStock < quantity {
		return nil, NewInsufficientStockError(product.ID, product.Code, product.CurrentStock, quantity)
	}

	balanceBefore := product.CurrentStock
	if err := product.RemoveStock(quantity); err != nil {
		return nil, err
	}

	movement, err := NewStockMovement(product.ID, MovementTypeOut, quantity, balanceBefore, product.CurrentStock)
	if err != nil {
		return nil, err
	}
	applyMovementContext(movement, mctx)

	product.AddDomainEvent(NewStockDecreasedEvent(product, movement))

	return movement, nil
}

func applyMovementContext(movement *StockMovement, mctx MovementContext) {
	if mctx.ReferenceType != nil {
		movement.WithReference(*mctx.ReferenceType, mctx.ReferenceID)
	}
	if mctx.SourceSystem != "" {
		movement.WithSourceSystem(mctx.SourceSystem)
	}
	if mctx.Notes != "" {
		movement.WithNotes(mctx.Notes)
	}
	if mctx.Actor != nil {
		movement.WithActor(*mctx.Actor)
	}
	if mctx.OccurredAt != nil {
		movement.WithOccurredAt(*mctx.OccurredAt)
	}
}
