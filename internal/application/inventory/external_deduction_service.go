package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// ExternalDeductionService processes stock deductions reported by
// external systems such as a point of sale. Products are addressed by
// code and every deduction is posted to the ledger as a SALE.
// Insufficient stock comes back as a result with status ERROR so
// machine callers can branch on it; every other failure is an error.
type ExternalDeductionService struct {
	scope          TransactionScope
	ledger         *inventory.StockLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewExternalDeductionService creates a new ExternalDeductionService
func NewExternalDeductionService(scope TransactionScope, ledger *inventory.StockLedger, logger *zap.Logger) *ExternalDeductionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExternalDeductionService{
		scope:  scope,
		ledger: ledger,
		logger: logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ExternalDeductionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Deduct applies a single external deduction. Insufficient stock
// yields an ERROR result instead of an error; an unknown product code
// or any other failure propagates as an error.
func (s *ExternalDeductionService) Deduct(ctx context.Context, req StockDeductionRequest, actor *uuid.UUID) (*StockDeductionResult, error) {
	var (
		result *StockDeductionResult
		events []shared.DomainEvent
	)

	refType := inventory.ReferenceTypeSale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByCodeForUpdate(ctx, req.ProductCode)
		if err != nil {
			return err
		}
		balanceBefore := product.CurrentStock

		movement, err := s.ledger.Decrease(product, req.Quantity, inventory.MovementContext{
			ReferenceType: &refType,
			SourceSystem:  req.SourceSystem,
			Notes:         req.Notes,
			Actor:         actor,
		})
		if err != nil {
			return err
		}

		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return err
		}
		if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
			return err
		}
		if err := recordStockAudit(ctx, repos.AuditRepo(), product, audit.ActionStockDecrease, balanceBefore, movement.ID, actor); err != nil {
			return err
		}

		movementID := movement.ID
		result = &StockDeductionResult{
			ProductCode:      product.Code,
			ProductName:      product.Name,
			QuantityDeducted: movement.Quantity,
			PreviousStock:    movement.BalanceBefore,
			CurrentStock:     movement.BalanceAfter,
			SourceSystem:     req.SourceSystem,
			MovementID:       &movementID,
			Status:           DeductionStatusSuccess,
			Timestamp:        time.Now(),
		}

		events = product.GetDomainEvents()
		product.ClearDomainEvents()
		return nil
	})
	if err != nil {
		if failure, ok := deductionFailure(req, err); ok {
			s.logger.Warn("external stock deduction rejected",
				zap.String("product_code", req.ProductCode),
				zap.String("source_system", req.SourceSystem),
				zap.Int("quantity", req.Quantity),
				zap.String("reason", failure.Message),
			)
			return failure, nil
		}
		return nil, err
	}

	s.publishEvents(ctx, events)

	return result, nil
}

// DeductBatch applies a batch of deductions. A line rejected for
// insufficient stock gets its own ERROR result and never blocks the
// others; any other failure aborts the batch.
func (s *ExternalDeductionService) DeductBatch(ctx context.Context, reqs []StockDeductionRequest, actor *uuid.UUID) ([]StockDeductionResult, error) {
	results := make([]StockDeductionResult, 0, len(reqs))
	for _, req := range reqs {
		result, err := s.Deduct(ctx, req, actor)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *ExternalDeductionService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// deductionFailure converts an insufficient stock rejection into an
// ERROR result. Every other error is passed through untouched.
func deductionFailure(req StockDeductionRequest, err error) (*StockDeductionResult, bool) {
	stockErr, ok := inventory.AsInsufficientStock(err)
	if !ok {
		return nil, false
	}
	return &StockDeductionResult{
		ProductCode:   req.ProductCode,
		PreviousStock: stockErr.Available,
		CurrentStock:  stockErr.Available,
		Status:        DeductionStatusError,
		Message:       stockErr.Error(),
		Timestamp:     time.Now(),
	}, true
}
