package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/catalog"
	"github.com/stockledger/backend/internal/domain/shared"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	auditRecorder  audit.Recorder
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, auditRecorder audit.Recorder) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		auditRecorder: auditRecorder,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest, actor *uuid.UUID) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.UnitPrice)
	if err != nil {
		return nil, err
	}

	if req.Description != "" || req.Unit != "" {
		unit := req.Unit
		if unit == "" {
			unit = product.Unit
		}
		if err := product.Update(req.Name, req.Description, unit); err != nil {
			return nil, err
		}
	}
	if req.MinStock > 0 || req.MaxStock != nil {
		if err := product.SetStockLimits(req.MinStock, req.MaxStock); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, product, audit.ActionCreate, nil, actor)
	s.publishDomainEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// Update updates an existing product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest, actor *uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := productSnapshot(product)

	unit := req.Unit
	if unit == "" {
		unit = product.Unit
	}
	if err := product.Update(req.Name, req.Description, unit); err != nil {
		return nil, err
	}
	if req.UnitPrice != nil {
		if err := product.SetUnitPrice(*req.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.MinStock != nil || req.MaxStock != nil {
		minStock := product.MinStock
		if req.MinStock != nil {
			minStock = *req.MinStock
		}
		maxStock := product.MaxStock
		if req.MaxStock != nil {
			maxStock = req.MaxStock
		}
		if err := product.SetStockLimits(minStock, maxStock); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, product, audit.ActionUpdate, before, actor)
	s.publishDomainEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetByCode retrieves a product by its unique code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves a paginated list of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search

	var (
		products []catalog.Product
		err      error
	)
	switch {
	case filter.LowStock:
		products, err = s.productRepo.FindLowStock(ctx, domainFilter)
	case filter.Status != "":
		products, err = s.productRepo.FindByStatus(ctx, catalog.ProductStatus(filter.Status), domainFilter)
	default:
		products, err = s.productRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, err
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToProductResponses(products), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Activate activates a product
func (s *ProductService) Activate(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, id, actor, (*catalog.Product).Activate)
}

// Deactivate deactivates a product
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*ProductResponse, error) {
	return s.changeStatus(ctx, id, actor, (*catalog.Product).Deactivate)
}

func (s *ProductService) changeStatus(ctx context.Context, id uuid.UUID, actor *uuid.UUID, change func(*catalog.Product) error) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := productSnapshot(product)

	if err := change(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, product, audit.ActionUpdate, before, actor)
	s.publishDomainEvents(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

func (s *ProductService) recordAudit(ctx context.Context, product *catalog.Product, action audit.AuditAction, before map[string]any, actor *uuid.UUID) {
	if s.auditRecorder == nil {
		return
	}
	log, err := audit.NewAuditLog(catalog.AggregateTypeProduct, product.ID, action, before, productSnapshot(product))
	if err != nil {
		return
	}
	_ = s.auditRecorder.Record(ctx, log.WithActor(actor))
}

func (s *ProductService) publishDomainEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	product.ClearDomainEvents()
}

func productSnapshot(p *catalog.Product) map[string]any {
	return map[string]any{
		"code":          p.Code,
		"name":          p.Name,
		"unit":          p.Unit,
		"unit_price":    p.UnitPrice.String(),
		"current_stock": p.CurrentStock,
		"min_stock":     p.MinStock,
		"status":        string(p.Status),
	}
}
