package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/trade"
)

type receivingFixture struct {
	orderRepo    *MockOrderRepository
	productRepo  *MockProductRepository
	movementRepo *MockMovementRepository
	auditRepo    *MockAuditRepository
	service      *ReceivingService
}

func newReceivingFixture() *receivingFixture {
	f := &receivingFixture{
		orderRepo:    new(MockOrderRepository),
		productRepo:  new(MockProductRepository),
		movementRepo: new(MockMovementRepository),
		auditRepo:    new(MockAuditRepository),
	}
	scope := NewNoOpTransactionScope(f.orderRepo, f.productRepo, f.movementRepo, f.auditRepo)
	f.service = NewReceivingService(scope, inventory.NewStockLedger(), zap.NewNop())
	return f
}

func newReceivingProduct(t *testing.T, code string, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(code, "Product "+code, decimal.NewFromInt(10))
	require.NoError(t, err)
	if stock > 0 {
		require.NoError(t, product.AddStock(stock))
	}
	product.ClearDomainEvents()
	return product
}

func newConfirmedOrder(t *testing.T, products []*catalog.Product, quantities []int) *trade.PurchaseOrder {
	t.Helper()
	order, err := trade.NewPurchaseOrder("PO-2026-00001", uuid.New(), "Acme Supply Co")
	require.NoError(t, err)
	for i, p := range products {
		_, err := order.AddLine(p.ID, p.Name, p.Code, quantities[i], p.UnitPrice)
		require.NoError(t, err)
	}
	require.NoError(t, order.Confirm())
	order.ClearDomainEvents()
	return order
}

func TestReceivingService_Receive(t *testing.T) {
	ctx := context.Background()

	t.Run("partial receipt updates order and posts stock in one batch", func(t *testing.T) {
		f := newReceivingFixture()
		product := newReceivingProduct(t, "SKU-001", 5)
		order := newConfirmedOrder(t, []*catalog.Product{product}, []int{50})
		lineID := order.Lines[0].ID

		f.orderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		f.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
		f.productRepo.On("SaveWithLock", ctx, product).Return(nil)
		f.movementRepo.On("Save", ctx, mock.MatchedBy(func(mv *inventory.StockMovement) bool {
			return mv.MovementType == inventory.MovementTypeIn && mv.Quantity == 30 &&
				mv.ReferenceType != nil && *mv.ReferenceType == inventory.ReferenceTypePurchaseOrder &&
				mv.ReferenceID != nil && *mv.ReferenceID == order.ID
		})).Return(nil)
		f.auditRepo.On("Record", ctx, mock.MatchedBy(func(log *audit.AuditLog) bool {
			return log.Action == audit.ActionStockIncrease
		})).Return(nil)
		f.auditRepo.On("Record", ctx, mock.MatchedBy(func(log *audit.AuditLog) bool {
			return log.Action == audit.ActionOrderReceive &&
				log.Before["status"] == "CONFIRMED" && log.After["status"] == "PARTIAL"
		})).Return(nil)

		result, err := f.service.Receive(ctx, order.ID, ReceiveRequest{
			Lines: []ReceiveLineRequest{{LineID: lineID, Quantity: 30}},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "PARTIAL", result.Status)
		assert.False(t, result.FullyReceived)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, 0, result.Lines[0].QuantityPreviouslyReceived)
		assert.Equal(t, 30, result.Lines[0].QuantityReceived)
		assert.Equal(t, 30, result.Lines[0].QuantityTotalReceived)
		assert.Equal(t, 20, result.Lines[0].QuantityPending)
		assert.Equal(t, 35, product.CurrentStock)
		f.orderRepo.AssertExpectations(t)
		f.auditRepo.AssertExpectations(t)
	})

	t.Run("completing batch moves order to COMPLETED", func(t *testing.T) {
		f := newReceivingFixture()
		p1 := newReceivingProduct(t, "SKU-001", 0)
		p2 := newReceivingProduct(t, "SKU-002", 0)
		order := newConfirmedOrder(t, []*catalog.Product{p1, p2}, []int{10, 20})

		f.orderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		f.productRepo.On("FindByIDForUpdate", ctx, p1.ID).Return(p1, nil)
		f.productRepo.On("FindByIDForUpdate", ctx, p2.ID).Return(p2, nil)
		f.productRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.auditRepo.On("Record", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		result, err := f.service.Receive(ctx, order.ID, ReceiveRequest{
			Lines: []ReceiveLineRequest{
				{LineID: order.Lines[0].ID, Quantity: 10},
				{LineID: order.Lines[1].ID, Quantity: 20},
			},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "COMPLETED", result.Status)
		assert.True(t, result.FullyReceived)
		assert.NotNil(t, result.ReceivedDate)
		assert.Equal(t, 10, p1.CurrentStock)
		assert.Equal(t, 20, p2.CurrentStock)
	})

	t.Run("back-dated batch stamps the supplied received date", func(t *testing.T) {
		f := newReceivingFixture()
		product := newReceivingProduct(t, "SKU-001", 0)
		order := newConfirmedOrder(t, []*catalog.Product{product}, []int{10})
		backDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

		f.orderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		f.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
		f.productRepo.On("SaveWithLock", ctx, product).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.auditRepo.On("Record", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		result, err := f.service.Receive(ctx, order.ID, ReceiveRequest{
			ReceivedDate: &backDate,
			Notes:        "late paperwork",
			Lines:        []ReceiveLineRequest{{LineID: order.Lines[0].ID, Quantity: 10}},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "COMPLETED", result.Status)
		require.NotNil(t, result.ReceivedDate)
		assert.Equal(t, backDate, result.ReceivedDate.UTC())
		assert.False(t, result.ProcessedAt.IsZero())
		assert.Equal(t, "late paperwork", result.Notes)
	})

	t.Run("zero quantity line skips the ledger but stays in the result", func(t *testing.T) {
		f := newReceivingFixture()
		product := newReceivingProduct(t, "SKU-001", 5)
		order := newConfirmedOrder(t, []*catalog.Product{product}, []int{50})

		f.orderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		f.auditRepo.On("Record", ctx, mock.MatchedBy(func(log *audit.AuditLog) bool {
			return log.Action == audit.ActionOrderReceive
		})).Return(nil)

		result, err := f.service.Receive(ctx, order.ID, ReceiveRequest{
			Lines: []ReceiveLineRequest{{LineID: order.Lines[0].ID, Quantity: 0}},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "CONFIRMED", result.Status)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, 0, result.Lines[0].QuantityReceived)
		assert.Equal(t, 5, product.CurrentStock)
		f.productRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
		f.movementRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("excess quantity aborts without touching stock", func(t *testing.T) {
		f := newReceivingFixture()
		product := newReceivingProduct(t, "SKU-001", 5)
		order := newConfirmedOrder(t, []*catalog.Product{product}, []int{50})
		_, err := order.Receive([]trade.ReceiveLine{{LineID: order.Lines[0].ID, Quantity: 30}}, orderDate())
		require.NoError(t, err)
		order.ClearDomainEvents()

		f.orderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)

		_, err = f.service.Receive(ctx, order.ID, ReceiveRequest{
			Lines: []ReceiveLineRequest{{LineID: order.Lines[0].ID, Quantity: 30}},
		}, nil)
		require.Error(t, err)

		qtyErr, ok := trade.AsInvalidReceiptQuantity(err)
		require.True(t, ok)
		assert.Equal(t, 50, qtyErr.Ordered)
		assert.Equal(t, 30, qtyErr.Received)
		assert.Equal(t, 5, product.CurrentStock)
		f.orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.movementRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("receiving against a cancelled order fails with state conflict", func(t *testing.T) {
		f := newReceivingFixture()
		product := newReceivingProduct(t, "SKU-001", 0)
		order := newConfirmedOrder(t, []*catalog.Product{product}, []int{10})
		require.NoError(t, order.Cancel("no longer needed"))
		order.ClearDomainEvents()

		f.orderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)

		_, err := f.service.Receive(ctx, order.ID, ReceiveRequest{
			Lines: []ReceiveLineRequest{{LineID: order.Lines[0].ID, Quantity: 5}},
		}, nil)
		require.Error(t, err)

		_, ok := trade.AsOrderStateConflict(err)
		assert.True(t, ok)
	})

	t.Run("order not found propagates", func(t *testing.T) {
		f := newReceivingFixture()
		orderID := uuid.New()
		f.orderRepo.On("FindByIDForUpdate", ctx, orderID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Receive(ctx, orderID, ReceiveRequest{
			Lines: []ReceiveLineRequest{{LineID: uuid.New(), Quantity: 1}},
		}, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("line from another order fails with invalid order operation", func(t *testing.T) {
		f := newReceivingFixture()
		product := newReceivingProduct(t, "SKU-001", 0)
		order := newConfirmedOrder(t, []*catalog.Product{product}, []int{10})

		f.orderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)

		_, err := f.service.Receive(ctx, order.ID, ReceiveRequest{
			Lines: []ReceiveLineRequest{{LineID: uuid.New(), Quantity: 5}},
		}, nil)
		require.Error(t, err)

		_, ok := trade.AsInvalidOrderOperation(err)
		assert.True(t, ok)
	})
}

func TestReceivingService_Idempotency(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate key is rejected before any work", func(t *testing.T) {
		f := newReceivingFixture()
		store := new(MockIdempotencyStore)
		f.service.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())

		store.On("IsProcessed", ctx, "batch-42").Return(true, nil)

		_, err := f.service.Receive(ctx, uuid.New(), ReceiveRequest{
			IdempotencyKey: "batch-42",
			Lines:          []ReceiveLineRequest{{LineID: uuid.New(), Quantity: 1}},
		}, nil)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_SUBMISSION", domainErr.Code)
		f.orderRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("key is marked after a successful batch", func(t *testing.T) {
		f := newReceivingFixture()
		store := new(MockIdempotencyStore)
		config := shared.DefaultIdempotencyConfig()
		f.service.SetIdempotencyStore(store, config)

		product := newReceivingProduct(t, "SKU-001", 0)
		order := newConfirmedOrder(t, []*catalog.Product{product}, []int{10})

		store.On("IsProcessed", ctx, "batch-7").Return(false, nil)
		store.On("MarkProcessed", ctx, "batch-7", config.TTL).Return(true, nil)
		f.orderRepo.On("FindByIDForUpdate", ctx, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", ctx, order).Return(nil)
		f.productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
		f.productRepo.On("SaveWithLock", ctx, product).Return(nil)
		f.movementRepo.On("Save", ctx, mock.AnythingOfType("*inventory.StockMovement")).Return(nil)
		f.auditRepo.On("Record", ctx, mock.AnythingOfType("*audit.AuditLog")).Return(nil)

		_, err := f.service.Receive(ctx, order.ID, ReceiveRequest{
			IdempotencyKey: "batch-7",
			Lines:          []ReceiveLineRequest{{LineID: order.Lines[0].ID, Quantity: 10}},
		}, nil)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("failed batch leaves the key unmarked", func(t *testing.T) {
		f := newReceivingFixture()
		store := new(MockIdempotencyStore)
		f.service.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())

		orderID := uuid.New()
		store.On("IsProcessed", ctx, "batch-9").Return(false, nil)
		f.orderRepo.On("FindByIDForUpdate", ctx, orderID).Return(nil, shared.ErrNotFound)

		_, err := f.service.Receive(ctx, orderID, ReceiveRequest{
			IdempotencyKey: "batch-9",
			Lines:          []ReceiveLineRequest{{LineID: uuid.New(), Quantity: 1}},
		}, nil)
		require.Error(t, err)
		store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})
}

func orderDate() time.Time {
	return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
}
