package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds an order with its lines by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate finds an order with its lines and takes a
	// row-level lock on the order so concurrent receiving batches
	// against it are serialized. Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByOrderNumber finds an order by its unique order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)

	// FindAll finds all orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)

	// FindByStatus finds orders by status
	FindByStatus(ctx context.Context, status PurchaseOrderStatus, filter shared.Filter) ([]PurchaseOrder, error)

	// FindBySupplier finds orders placed with a supplier
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]PurchaseOrder, error)

	// FindOverdue finds non-terminal orders whose expected date is
	// before the given time
	FindOverdue(ctx context.Context, now time.Time, filter shared.Filter) ([]PurchaseOrder, error)

	// Save creates or updates an order together with its lines
	Save(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock updates an order with an optimistic version check
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts orders in a given status
	CountByStatus(ctx context.Context, status PurchaseOrderStatus) (int64, error)

	// ExistsByOrderNumber checks if an order number is already taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// GenerateOrderNumber generates the next sequential order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
