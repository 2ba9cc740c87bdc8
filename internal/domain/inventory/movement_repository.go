package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// MovementRepository defines the interface for the append-only movement
// ledger. There is no update or delete: the ledger is immutable.
type MovementRepository interface {
	// Save appends a movement to the ledger
	Save(ctx context.Context, movement *StockMovement) error

	// SaveBatch appends multiple movements in one call
	SaveBatch(ctx context.Context, movements []*StockMovement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByProduct finds movements for a product, newest first by default
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindByReference finds movements attributed to a source document
	FindByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) ([]StockMovement, error)

	// CountByProduct counts movements for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)

	// SumSignedQuantity returns the running sum of signed quantities for
	// a product. It must always equal the product's current stock.
	SumSignedQuantity(ctx context.Context, productID uuid.UUID) (int, error)
}
