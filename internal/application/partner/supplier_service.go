package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/audit"
	"github.com/stockledger/backend/internal/domain/partner"
	"github.com/stockledger/backend/internal/domain/shared"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo   partner.SupplierRepository
	auditRecorder  audit.Recorder
	eventPublisher shared.EventPublisher
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, auditRecorder audit.Recorder) *SupplierService {
	return &SupplierService{
		supplierRepo:  supplierRepo,
		auditRecorder: auditRecorder,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SupplierService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest, actor *uuid.UUID) (*SupplierResponse, error) {
	exists, err := s.supplierRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Supplier with this code already exists")
	}

	supplier, err := partner.NewSupplier(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if err := applyContactFields(supplier, req.ContactName, req.Phone, req.Email, req.Address, req.Notes); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, supplier, audit.ActionCreate, nil, actor)
	s.publishDomainEvents(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// Update updates an existing supplier
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest, actor *uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := supplierSnapshot(supplier)

	if err := supplier.Update(req.Name); err != nil {
		return nil, err
	}
	if err := applyContactFields(supplier, req.ContactName, req.Phone, req.Email, req.Address, req.Notes); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.SaveWithLock(ctx, supplier); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, supplier, audit.ActionUpdate, before, actor)
	s.publishDomainEvents(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSupplierResponse(supplier)
	return &response, nil
}

// List retrieves a paginated list of suppliers
func (s *SupplierService) List(ctx context.Context, filter SupplierListFilter) (*shared.Paginated[SupplierResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search

	var (
		suppliers []partner.Supplier
		err       error
	)
	if filter.Status != "" {
		suppliers, err = s.supplierRepo.FindByStatus(ctx, partner.SupplierStatus(filter.Status), domainFilter)
	} else {
		suppliers, err = s.supplierRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, err
	}

	total, err := s.supplierRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToSupplierResponses(suppliers), total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// Activate activates a supplier
func (s *SupplierService) Activate(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*SupplierResponse, error) {
	return s.changeStatus(ctx, id, actor, (*partner.Supplier).Activate)
}

// Deactivate deactivates a supplier
func (s *SupplierService) Deactivate(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*SupplierResponse, error) {
	return s.changeStatus(ctx, id, actor, (*partner.Supplier).Deactivate)
}

func (s *SupplierService) changeStatus(ctx context.Context, id uuid.UUID, actor *uuid.UUID, change func(*partner.Supplier) error) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := supplierSnapshot(supplier)

	if err := change(supplier); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.SaveWithLock(ctx, supplier); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, supplier, audit.ActionUpdate, before, actor)
	s.publishDomainEvents(ctx, supplier)

	response := ToSupplierResponse(supplier)
	return &response, nil
}

func applyContactFields(supplier *partner.Supplier, contactName, phone, email, address, notes string) error {
	if contactName != "" || phone != "" || email != "" {
		if err := supplier.SetContact(contactName, phone, email); err != nil {
			return err
		}
	}
	if address != "" {
		if err := supplier.SetAddress(address); err != nil {
			return err
		}
	}
	if notes != "" {
		supplier.SetNotes(notes)
	}
	return nil
}

func (s *SupplierService) recordAudit(ctx context.Context, supplier *partner.Supplier, action audit.AuditAction, before map[string]any, actor *uuid.UUID) {
	if s.auditRecorder == nil {
		return
	}
	log, err := audit.NewAuditLog(partner.AggregateTypeSupplier, supplier.ID, action, before, supplierSnapshot(supplier))
	if err != nil {
		return
	}
	_ = s.auditRecorder.Record(ctx, log.WithActor(actor))
}

func (s *SupplierService) publishDomainEvents(ctx context.Context, supplier *partner.Supplier) {
	if s.eventPublisher == nil {
		return
	}
	events := supplier.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	supplier.ClearDomainEvents()
}

func supplierSnapshot(s *partner.Supplier) map[string]any {
	return map[string]any{
		"code":         s.Code,
		"name":         s.Name,
		"contact_name": s.ContactName,
		"phone":        s.Phone,
		"email":        s.Email,
		"status":       string(s.Status),
	}
}
