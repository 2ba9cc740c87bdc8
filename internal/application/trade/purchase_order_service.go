package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/partner"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/trade"
)

// PurchaseOrderService handles purchase order lifecycle operations
// other than receiving, which lives in ReceivingService.
type PurchaseOrderService struct {
	orderRepo      trade.PurchaseOrderRepository
	supplierRepo   partner.SupplierRepository
	productRepo    catalog.ProductRepository
	auditRecorder  audit.Recorder
	eventPublisher shared.EventPublisher
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo trade.PurchaseOrderRepository,
	supplierRepo partner.SupplierRepository,
	productRepo catalog.ProductRepository,
	auditRecorder audit.Recorder,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:     orderRepo,
		supplierRepo:  supplierRepo,
		productRepo:   productRepo,
		auditRecorder: auditRecorder,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new purchase order with its lines. Line prices
// default to the product's current unit price unless overridden.
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest, actor *uuid.UUID) (*PurchaseOrderResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}
	if !supplier.IsActive() {
		return nil, shared.NewDomainError("SUPPLIER_INACTIVE", "Cannot order from an inactive supplier")
	}

	productIDs := make([]uuid.UUID, 0, len(req.Lines))
	for _, line := range req.Lines {
		productIDs = append(productIDs, line.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewPurchaseOrder(orderNumber, supplier.ID, supplier.Name)
	if err != nil {
		return nil, err
	}
	if req.ExpectedDate != nil {
		if err := order.SetExpectedDate(*req.ExpectedDate); err != nil {
			return nil, err
		}
	}
	if req.Notes != "" {
		order.SetNotes(req.Notes)
	}

	for _, line := range req.Lines {
		product, ok := productsByID[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product not found: "+line.ProductID.String())
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is inactive: "+product.Code)
		}
		unitPrice := product.UnitPrice
		if line.UnitPrice != nil {
			unitPrice = *line.UnitPrice
		}
		if _, err := order.AddLine(product.ID, product.Name, product.Code, line.Quantity, unitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, order, audit.ActionCreate, nil, actor)
	s.publishDomainEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Confirm confirms a pending purchase order
func (s *PurchaseOrderService) Confirm(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, id, actor, func(order *trade.PurchaseOrder) error {
		return order.Confirm()
	})
}

// Cancel cancels a purchase order with an optional reason
func (s *PurchaseOrderService) Cancel(ctx context.Context, id uuid.UUID, req CancelPurchaseOrderRequest, actor *uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.transition(ctx, id, actor, func(order *trade.PurchaseOrder) error {
		return order.Cancel(req.Reason)
	})
}

func (s *PurchaseOrderService) transition(ctx context.Context, id uuid.UUID, actor *uuid.UUID, change func(*trade.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := orderSnapshot(order)

	if err := change(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, order, audit.ActionUpdate, before, actor)
	s.publishDomainEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order with its lines
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves a purchase order by its order number
func (s *PurchaseOrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves a paginated list of purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, filter OrderListFilter) (*shared.Paginated[PurchaseOrderResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	var (
		orders []trade.PurchaseOrder
		err    error
	)
	// The active criteria also go into the filter's Filters map so the
	// total below counts the same set the query returns.
	switch {
	case filter.Overdue:
		now := time.Now()
		domainFilter.Filters["overdue_asof"] = now
		orders, err = s.orderRepo.FindOverdue(ctx, now, domainFilter)
	case filter.Status != "":
		domainFilter.Filters["status"] = filter.Status
		orders, err = s.orderRepo.FindByStatus(ctx, trade.PurchaseOrderStatus(filter.Status), domainFilter)
	case filter.SupplierID != "":
		supplierID, parseErr := uuid.Parse(filter.SupplierID)
		if parseErr != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid supplier ID")
		}
		domainFilter.Filters["supplier_id"] = supplierID
		orders, err = s.orderRepo.FindBySupplier(ctx, supplierID, domainFilter)
	default:
		orders, err = s.orderRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToPurchaseOrderResponses(orders), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

func (s *PurchaseOrderService) recordAudit(ctx context.Context, order *trade.PurchaseOrder, action audit.AuditAction, before map[string]any, actor *uuid.UUID) {
	if s.auditRecorder == nil {
		return
	}
	log, err := audit.NewAuditLog(trade.AggregateTypePurchaseOrder, order.ID, action, before, orderSnapshot(order))
	if err != nil {
		return
	}
	_ = s.auditRecorder.Record(ctx, log.WithActor(actor))
}

func (s *PurchaseOrderService) publishDomainEvents(ctx context.Context, order *trade.PurchaseOrder) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	order.ClearDomainEvents()
}

func orderSnapshot(o *trade.PurchaseOrder) map[string]any {
	return map[string]any{
		"order_number": o.OrderNumber,
		"supplier_id":  o.SupplierID.String(),
		"status":       string(o.Status),
		"total_amount": o.TotalAmount.String(),
		"line_count":   len(o.Lines),
	}
}
