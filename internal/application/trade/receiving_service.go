package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/trade"
)

// ReceivingService applies receiving batches against purchase orders.
// A batch is one transaction: the order's line and status mutations,
// the ledger posting for every received product, and the audit facts
// either all commit or none do. The lifecycle is evaluated once per
// batch, never per line.
type ReceivingService struct {
	scope             TransactionScope
	ledger            *inventory.StockLedger
	idempotencyStore  shared.IdempotencyStore
	idempotencyConfig shared.IdempotencyConfig
	eventPublisher    shared.EventPublisher
	logger            *zap.Logger
}

// NewReceivingService creates a new ReceivingService
func NewReceivingService(scope TransactionScope, ledger *inventory.StockLedger, logger *zap.Logger) *ReceivingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceivingService{
		scope:             scope,
		ledger:            ledger,
		idempotencyConfig: shared.DefaultIdempotencyConfig(),
		logger:            logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ReceivingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables idempotency key checking for batches that
// carry a client-supplied key
func (s *ReceivingService) SetIdempotencyStore(store shared.IdempotencyStore, config shared.IdempotencyConfig) {
	s.idempotencyStore = store
	s.idempotencyConfig = config
}

// Receive applies a receiving batch to a purchase order
func (s *ReceivingService) Receive(ctx context.Context, orderID uuid.UUID, req ReceiveRequest, actor *uuid.UUID) (*ReceiveResult, error) {
	if err := s.checkIdempotency(ctx, req.IdempotencyKey); err != nil {
		return nil, err
	}

	var (
		result *ReceiveResult
		events []shared.DomainEvent
	)
	receivedDate := time.Now()
	if req.ReceivedDate != nil {
		receivedDate = *req.ReceivedDate
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		statusBefore := string(order.Status)

		lines := make([]trade.ReceiveLine, 0, len(req.Lines))
		for _, line := range req.Lines {
			lines = append(lines, trade.ReceiveLine{LineID: line.LineID, Quantity: line.Quantity})
		}

		summaries, err := order.Receive(lines, receivedDate)
		if err != nil {
			return err
		}

		for _, summary := range summaries {
			if summary.QuantityReceived == 0 {
				continue
			}
			productEvents, err := s.postReceiptToLedger(ctx, repos, order, summary, actor)
			if err != nil {
				return err
			}
			events = append(events, productEvents...)
		}

		if err := repos.OrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}
		if err := s.recordReceiveAudit(ctx, repos.AuditRepo(), order, statusBefore, summaries, req.Notes, actor); err != nil {
			return err
		}

		events = append(events, order.GetDomainEvents()...)
		order.ClearDomainEvents()

		batchResult := ToReceiveResult(order, summaries, time.Now(), req.Notes)
		result = &batchResult
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markProcessed(ctx, req.IdempotencyKey)
	s.publishEvents(ctx, events)

	s.logger.Info("receiving batch applied",
		zap.String("order_id", result.OrderID.String()),
		zap.String("order_number", result.OrderNumber),
		zap.String("status", result.Status),
		zap.Int("lines", len(result.Lines)),
	)

	return result, nil
}

// postReceiptToLedger increases the received product's stock and saves
// the paired movement inside the batch transaction
func (s *ReceivingService) postReceiptToLedger(
	ctx context.Context,
	repos TransactionalRepositories,
	order *trade.PurchaseOrder,
	summary trade.ReceivedLineSummary,
	actor *uuid.UUID,
) ([]shared.DomainEvent, error) {
	product, err := repos.ProductRepo().FindByIDForUpdate(ctx, summary.ProductID)
	if err != nil {
		return nil, err
	}
	balanceBefore := product.CurrentStock

	refType := inventory.ReferenceTypePurchaseOrder
	orderID := order.ID
	movement, err := s.ledger.Increase(product, summary.QuantityReceived, inventory.MovementContext{
		ReferenceType: &refType,
		ReferenceID:   &orderID,
		Actor:         actor,
	})
	if err != nil {
		return nil, err
	}

	if err := repos.MovementRepo().Save(ctx, movement); err != nil {
		return nil, err
	}
	if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	log, err := audit.NewAuditLog(catalog.AggregateTypeProduct, product.ID, audit.ActionStockIncrease,
		map[string]any{"current_stock": balanceBefore},
		map[string]any{"current_stock": product.CurrentStock, "movement_id": movement.ID.String()},
	)
	if err != nil {
		return nil, err
	}
	if err := repos.AuditRepo().Record(ctx, log.WithActor(actor)); err != nil {
		return nil, err
	}

	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	return events, nil
}

func (s *ReceivingService) recordReceiveAudit(
	ctx context.Context,
	recorder audit.Recorder,
	order *trade.PurchaseOrder,
	statusBefore string,
	summaries []trade.ReceivedLineSummary,
	notes string,
	actor *uuid.UUID,
) error {
	received := make([]map[string]any, 0, len(summaries))
	for _, summary := range summaries {
		received = append(received, map[string]any{
			"line_id":  summary.LineID.String(),
			"quantity": summary.QuantityReceived,
		})
	}

	after := map[string]any{"status": string(order.Status), "received": received}
	if notes != "" {
		after["notes"] = notes
	}
	log, err := audit.NewAuditLog(trade.AggregateTypePurchaseOrder, order.ID, audit.ActionOrderReceive,
		map[string]any{"status": statusBefore},
		after,
	)
	if err != nil {
		return err
	}
	return recorder.Record(ctx, log.WithActor(actor))
}

// checkIdempotency rejects a batch whose key was already processed.
// The key is only marked after the batch commits, so a failed batch can
// be retried with the same key.
func (s *ReceivingService) checkIdempotency(ctx context.Context, key string) error {
	if s.idempotencyStore == nil || !s.idempotencyConfig.Enabled || key == "" {
		return nil
	}
	processed, err := s.idempotencyStore.IsProcessed(ctx, key)
	if err != nil {
		s.logger.Warn("idempotency check failed, proceeding", zap.Error(err))
		return nil
	}
	if processed {
		return shared.ErrDuplicateSubmission
	}
	return nil
}

func (s *ReceivingService) markProcessed(ctx context.Context, key string) {
	if s.idempotencyStore == nil || !s.idempotencyConfig.Enabled || key == "" {
		return
	}
	if _, err := s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyConfig.TTL); err != nil {
		s.logger.Warn("failed to mark idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *ReceivingService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
