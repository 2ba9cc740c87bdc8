package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a stockable item in the catalog.
// It is the aggregate root for catalog operations. CurrentStock is a
// derived quantity: it only changes together with a stock ledger
// movement, never by direct assignment.
type Product struct {
	shared.BaseAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	Unit         string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentStock int             `gorm:"not null;default:0;check:current_stock >= 0"`
	MinStock     int             `gorm:"not null;default:0"`
	MaxStock     *int            `gorm:""`
	Status       ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with required fields
func NewProduct(code, name string, unitPrice decimal.Decimal) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Unit:              "pcs",
		UnitPrice:         unitPrice,
		CurrentStock:      0,
		MinStock:          0,
		Status:            ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description, unit string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if unit == "" {
		unit = p.Unit
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}

	p.Name = name
	p.Description = description
	p.Unit = unit
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductUpdatedEvent(p))

	return nil
}

// SetUnitPrice sets the product's unit price
func (p *Product) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	oldPrice := p.UnitPrice
	p.UnitPrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductPriceChangedEvent(p, oldPrice))

	return nil
}

// SetStockLimits sets the minimum and optional maximum stock thresholds
func (p *Product) SetStockLimits(minStock int, maxStock *int) error {
	if minStock < 0 {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}
	if maxStock != nil && *maxStock < minStock {
		return shared.NewDomainError("INVALID_MAX_STOCK", "Maximum stock cannot be below minimum stock")
	}

	p.MinStock = minStock
	p.MaxStock = maxStock
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// AddStock increases the current stock level.
// The stock ledger appends a matching movement in the same unit of work.
func (p *Product) AddStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	p.CurrentStock += quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// RemoveStock decreases the current stock level.
// The stock ledger appends a matching movement in the same unit of work.
func (p *Product) RemoveStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.CurrentStock < quantity {
		return shared.ErrInsufficientStock
	}

	p.CurrentStock -= quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Activate activates the product
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}

	oldStatus := p.Status
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusActive))

	return nil
}

// Deactivate deactivates the product. Products carrying stock history
// are never physically deleted.
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}

	oldStatus := p.Status
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewProductStatusChangedEvent(p, oldStatus, ProductStatusInactive))

	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsLowStock returns true if current stock is below the minimum threshold
func (p *Product) IsLowStock() bool {
	return p.CurrentStock < p.MinStock
}

// IsOverStock returns true if current stock exceeds the maximum threshold.
// Over-stock is a reporting signal only; increases are never rejected
// for exceeding MaxStock.
func (p *Product) IsOverStock() bool {
	return p.MaxStock != nil && p.CurrentStock > *p.MaxStock
}

// Validation functions

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
