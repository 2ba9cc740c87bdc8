package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	// PurchaseOrderStatusPending is the initial state after creation
	PurchaseOrderStatusPending PurchaseOrderStatus = "PENDING"
	// PurchaseOrderStatusConfirmed means the order was confirmed with the supplier
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "CONFIRMED"
	// PurchaseOrderStatusPartial means some but not all lines are fully received
	PurchaseOrderStatusPartial PurchaseOrderStatus = "PARTIAL"
	// PurchaseOrderStatusCompleted means every line is fully received (terminal)
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "COMPLETED"
	// PurchaseOrderStatusCancelled means the order was cancelled (terminal)
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// String returns the string representation of the status
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known value
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending,
		PurchaseOrderStatusConfirmed,
		PurchaseOrderStatusPartial,
		PurchaseOrderStatusCompleted,
		PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are allowed
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusCompleted || s == PurchaseOrderStatusCancelled
}

// CanTransitionTo returns true if the transition is allowed
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusConfirmed ||
			target == PurchaseOrderStatusPartial ||
			target == PurchaseOrderStatusCompleted ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusConfirmed:
		return target == PurchaseOrderStatusPartial ||
			target == PurchaseOrderStatusCompleted ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartial:
		return target == PurchaseOrderStatusPartial ||
			target == PurchaseOrderStatusCompleted ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return false
	}
	return false
}

// CanReceive returns true if goods may be received against an order in
// this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return !s.IsTerminal()
}

// OrderLine is one product entry within a purchase order. The line
// holds only the owning order's id, never a back-reference to the
// order itself. The received quantity never exceeds the ordered
// quantity.
type OrderLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName      string          `gorm:"type:varchar(200);not null"`
	ProductCode      string          `gorm:"type:varchar(50);not null"`
	QuantityOrdered  int             `gorm:"not null;check:quantity_ordered > 0"`
	QuantityReceived int             `gorm:"not null;default:0"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "purchase_order_lines"
}

// PendingQuantity returns how much of the line is still to be received
func (l *OrderLine) PendingQuantity() int {
	return l.QuantityOrdered - l.QuantityReceived
}

// IsFullyReceived returns true if the whole ordered quantity arrived
func (l *OrderLine) IsFullyReceived() bool {
	return l.QuantityReceived >= l.QuantityOrdered
}

// IsPartiallyReceived returns true if some but not all of the line arrived
func (l *OrderLine) IsPartiallyReceived() bool {
	return l.QuantityReceived > 0 && l.QuantityReceived < l.QuantityOrdered
}

// Receive records an arrival of quantity against this line. Not
// idempotent: replaying the same receipt double-counts, so callers must
// guard against resubmission.
func (l *OrderLine) Receive(quantity int) error {
	if quantity <= 0 {
		return NewInvalidReceiptQuantityError(l.ID, l.QuantityOrdered, l.QuantityReceived, quantity)
	}
	if l.QuantityReceived+quantity > l.QuantityOrdered {
		return NewInvalidReceiptQuantityError(l.ID, l.QuantityOrdered, l.QuantityReceived, quantity)
	}

	l.QuantityReceived += quantity
	l.UpdatedAt = time.Now()

	return nil
}

func (l *OrderLine) recalculateTotal() {
	l.TotalPrice = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.QuantityOrdered)))
}

// ReceiveLine is one (line id, quantity) pair of a receiving batch.
// Quantity zero marks a line as "not yet received" with no side effects.
type ReceiveLine struct {
	LineID   uuid.UUID
	Quantity int
}

// ReceivedLineSummary describes the outcome of one processed line
type ReceivedLineSummary struct {
	LineID                     uuid.UUID
	ProductID                  uuid.UUID
	ProductCode                string
	ProductName                string
	QuantityOrdered            int
	QuantityPreviouslyReceived int
	QuantityReceived           int
	QuantityTotalReceived      int
	QuantityPending            int
	FullyReceived              bool
}

// PurchaseOrder is the aggregate root for order receiving. Its status
// is driven by the aggregated receipt state of its lines.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber  string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	SupplierName string              `gorm:"type:varchar(200);not null"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	OrderDate    time.Time           `gorm:"not null"`
	ExpectedDate *time.Time          `gorm:"index"`
	ReceivedDate *time.Time          ``
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Notes        string              `gorm:"type:text"`
	ConfirmedAt  *time.Time          ``
	CancelledAt  *time.Time          ``
	CancelReason string              `gorm:"type:varchar(500)"`
	Lines        []OrderLine         `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in PENDING status
func NewPurchaseOrder(orderNumber string, supplierID uuid.UUID, supplierName string) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier name cannot be empty")
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		Status:            PurchaseOrderStatusPending,
		OrderDate:         time.Now(),
		TotalAmount:       decimal.Zero,
		Lines:             make([]OrderLine, 0),
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// SetExpectedDate sets the expected delivery date
func (o *PurchaseOrder) SetExpectedDate(date time.Time) error {
	if o.Status.IsTerminal() {
		return NewOrderStateConflictError(o.ID, o.Status)
	}

	o.ExpectedDate = &date
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetNotes sets free-form notes on the order
func (o *PurchaseOrder) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// AddLine adds a product line to the order. Lines can only be added
// before any receiving happened.
func (o *PurchaseOrder) AddLine(productID uuid.UUID, productName, productCode string, quantityOrdered int, unitPrice decimal.Decimal) (*OrderLine, error) {
	if o.Status != PurchaseOrderStatusPending && o.Status != PurchaseOrderStatusConfirmed {
		return nil, NewOrderStateConflictError(o.ID, o.Status)
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantityOrdered <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if !unitPrice.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}

	now := time.Now()
	line := OrderLine{
		ID:               uuid.New(),
		OrderID:          o.ID,
		ProductID:        productID,
		ProductName:      productName,
		ProductCode:      productCode,
		QuantityOrdered:  quantityOrdered,
		QuantityReceived: 0,
		UnitPrice:        unitPrice,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	line.recalculateTotal()

	o.Lines = append(o.Lines, line)
	o.recalculateTotalAmount()
	o.UpdatedAt = now
	o.IncrementVersion()

	return &o.Lines[len(o.Lines)-1], nil
}

// Confirm confirms the order with the supplier
func (o *PurchaseOrder) Confirm() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusConfirmed) {
		return NewOrderStateConflictError(o.ID, o.Status)
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot confirm an order with no lines")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderConfirmedEvent(o))

	return nil
}

// Cancel cancels the order. Allowed from any non-terminal status.
// Cancellation is a status, not a deletion: lines and historical
// movements are kept.
func (o *PurchaseOrder) Cancel(reason string) error {
	if o.Status.IsTerminal() {
		return NewOrderStateConflictError(o.ID, o.Status)
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, reason))

	return nil
}

// Receive applies a receiving batch to the order's lines and evaluates
// the lifecycle transition once for the whole batch. Any line failure
// aborts the call with no mutation visible to the caller only when the
// enclosing unit of work rolls back; the aggregate itself stops at the
// first failing line.
func (o *PurchaseOrder) Receive(lines []ReceiveLine, receivedDate time.Time) ([]ReceivedLineSummary, error) {
	if !o.Status.CanReceive() {
		return nil, NewOrderStateConflictError(o.ID, o.Status)
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_BATCH", "Receiving batch cannot be empty")
	}

	summaries := make([]ReceivedLineSummary, 0, len(lines))
	for _, rl := range lines {
		line := o.findLine(rl.LineID)
		if line == nil {
			return nil, NewInvalidOrderOperationError(o.ID, "order line does not belong to this order")
		}
		if rl.Quantity < 0 {
			return nil, NewInvalidReceiptQuantityError(line.ID, line.QuantityOrdered, line.QuantityReceived, rl.Quantity)
		}

		previously := line.QuantityReceived
		if rl.Quantity > 0 {
			if err := line.Receive(rl.Quantity); err != nil {
				return nil, err
			}
		}

		summaries = append(summaries, ReceivedLineSummary{
			LineID:                     line.ID,
			ProductID:                  line.ProductID,
			ProductCode:                line.ProductCode,
			ProductName:                line.ProductName,
			QuantityOrdered:            line.QuantityOrdered,
			QuantityPreviouslyReceived: previously,
			QuantityReceived:           rl.Quantity,
			QuantityTotalReceived:      line.QuantityReceived,
			QuantityPending:            line.PendingQuantity(),
			FullyReceived:              line.IsFullyReceived(),
		})
	}

	o.evaluateReceiptState(receivedDate)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o, summaries, receivedDate))
	if o.Status == PurchaseOrderStatusCompleted {
		o.AddDomainEvent(NewPurchaseOrderCompletedEvent(o))
	}

	return summaries, nil
}

// evaluateReceiptState runs the lifecycle transition rule once after a
// batch: all lines fully received moves the order to COMPLETED, any
// received quantity moves it to PARTIAL, otherwise the status is left
// unchanged.
func (o *PurchaseOrder) evaluateReceiptState(receivedDate time.Time) {
	switch {
	case o.IsFullyReceived():
		o.Status = PurchaseOrderStatusCompleted
		o.ReceivedDate = &receivedDate
	case o.hasAnyReceipt():
		o.Status = PurchaseOrderStatusPartial
		if o.ReceivedDate == nil {
			o.ReceivedDate = &receivedDate
		}
	}
}

// IsFullyReceived returns true when every line is fully received
func (o *PurchaseOrder) IsFullyReceived() bool {
	if len(o.Lines) == 0 {
		return false
	}
	for i := range o.Lines {
		if !o.Lines[i].IsFullyReceived() {
			return false
		}
	}
	return true
}

func (o *PurchaseOrder) hasAnyReceipt() bool {
	for i := range o.Lines {
		if o.Lines[i].QuantityReceived > 0 {
			return true
		}
	}
	return false
}

// IsOverdue returns true when the expected date has passed and the
// order is not in a terminal state. Derived, never stored.
func (o *PurchaseOrder) IsOverdue(now time.Time) bool {
	return o.ExpectedDate != nil && o.ExpectedDate.Before(now) && !o.Status.IsTerminal()
}

// FindLine returns the line with the given id, or nil
func (o *PurchaseOrder) FindLine(lineID uuid.UUID) *OrderLine {
	return o.findLine(lineID)
}

func (o *PurchaseOrder) findLine(lineID uuid.UUID) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

func (o *PurchaseOrder) recalculateTotalAmount() {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].TotalPrice)
	}
	o.TotalAmount = total
}
