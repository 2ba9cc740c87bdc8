package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// StockService handles manual stock adjustments and movement queries.
// Every adjustment goes through the stock ledger so the mutation, its
// movement record, and its audit fact land in one transaction.
type StockService struct {
	scope          TransactionScope
	ledger         *inventory.StockLedger
	movementRepo   inventory.MovementRepository
	eventPublisher shared.EventPublisher
}

// NewStockService creates a new StockService
func NewStockService(scope TransactionScope, ledger *inventory.StockLedger, movementRepo inventory.MovementRepository) *StockService {
	return &StockService{
		scope:        scope,
		ledger:       ledger,
		movementRepo: movementRepo,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// IncreaseStock raises a product's stock as a manual adjustment
func (s *StockService) IncreaseStock(ctx context.Context, productID uuid.UUID, req StockAdjustmentRequest, actor *uuid.UUID) (*MovementResponse, error) {
	return s.adjust(ctx, productID, req, actor, s.ledger.Increase, audit.ActionStockIncrease)
}

// DecreaseStock lowers a product's stock as a manual adjustment.
// Fails with InsufficientStockError when available stock is below the
// requested quantity; nothing is persisted in that case.
func (s *StockService) DecreaseStock(ctx context.Context, productID uuid.UUID, req StockAdjustmentRequest, actor *uuid.UUID) (*MovementResponse, error) {
	return s.adjust(ctx, productID, req, actor, s.ledger.Decrease, audit.ActionStockDecrease)
}

func (s *StockService) adjust(
	ctx context.Context,
	productID uuid.UUID,
	req StockAdjustmentRequest,
	actor *uuid.UUID,
	apply func(*catalog.Product, int, inventory.MovementContext) (*inventory.StockMovement, error),
	action audit.AuditAction,
) (*MovementResponse, error) {
	var (
		movement *inventory.StockMovement
		events   []shared.DomainEvent
	)

	refType := inventory.ReferenceTypeAdjustment
	if req.ReferenceType != "" {
		refType = inventory.ReferenceType(req.ReferenceType)
		if !refType.IsValid() {
			return nil, shared.NewDomainError("INVALID_REFERENCE_TYPE", "Unknown reference type: "+req.ReferenceType)
		}
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		balanceBefore := product.CurrentStock

		movement, err = apply(product, req.Quantity, inventory.MovementContext{
			ReferenceType: &refType,
			ReferenceID:   req.ReferenceID,
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
		if err := recordStockAudit(ctx, repos.AuditRepo(), product, action, balanceBefore, movement.ID, actor); err != nil {
			return err
		}

		events = product.GetDomainEvents()
		product.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)

	response := ToMovementResponse(movement)
	return &response, nil
}

// GetMovements retrieves a product's movement history, newest first
func (s *StockService) GetMovements(ctx context.Context, productID uuid.UUID, filter MovementListFilter) (*shared.Paginated[MovementResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	movements, err := s.movementRepo.FindByProduct(ctx, productID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.movementRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToMovementResponses(movements), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

func (s *StockService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// recordStockAudit writes the audit fact for a stock mutation inside
// the same transaction as the mutation itself.
func recordStockAudit(
	ctx context.Context,
	recorder audit.Recorder,
	product *catalog.Product,
	action audit.AuditAction,
	balanceBefore int,
	movementID uuid.UUID,
	actor *uuid.UUID,
) error {
	log, err := audit.NewAuditLog(catalog.AggregateTypeProduct, product.ID, action,
		map[string]any{"current_stock": balanceBefore},
		map[string]any{"current_stock": product.CurrentStock, "movement_id": movementID.String()},
	)
	if err != nil {
		return err
	}
	return recorder.Record(ctx, log.WithActor(actor))
}
