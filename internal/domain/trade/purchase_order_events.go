package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderConfirmed = "PurchaseOrderConfirmed"
	EventTypePurchaseOrderReceived  = "PurchaseOrderReceived"
	EventTypePurchaseOrderCompleted = "PurchaseOrderCompleted"
	EventTypePurchaseOrderCancelled = "PurchaseOrderCancelled"
)

// PurchaseOrderCreatedEvent is published when a new order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	SupplierID  uuid.UUID `json:"supplier_id"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
	}
}

// PurchaseOrderConfirmedEvent is published when an order is confirmed
type PurchaseOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	SupplierID  uuid.UUID `json:"supplier_id"`
}

// NewPurchaseOrderConfirmedEvent creates a new PurchaseOrderConfirmedEvent
func NewPurchaseOrderConfirmedEvent(order *PurchaseOrder) *PurchaseOrderConfirmedEvent {
	return &PurchaseOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderConfirmed, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		SupplierID:      order.SupplierID,
	}
}

// ReceivedLineInfo is the per-line payload of a receipt event
type ReceivedLineInfo struct {
	LineID           uuid.UUID `json:"line_id"`
	ProductID        uuid.UUID `json:"product_id"`
	ProductCode      string    `json:"product_code"`
	QuantityReceived int       `json:"quantity_received"`
	FullyReceived    bool      `json:"fully_received"`
}

// PurchaseOrderReceivedEvent is published after a receiving batch is applied
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID           `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	Status        PurchaseOrderStatus `json:"status"`
	ReceivedDate  time.Time           `json:"received_date"`
	ReceivedLines []ReceivedLineInfo  `json:"received_lines"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(order *PurchaseOrder, summaries []ReceivedLineSummary, receivedDate time.Time) *PurchaseOrderReceivedEvent {
	lines := make([]ReceivedLineInfo, 0, len(summaries))
	for _, s := range summaries {
		lines = append(lines, ReceivedLineInfo{
			LineID:           s.LineID,
			ProductID:        s.ProductID,
			ProductCode:      s.ProductCode,
			QuantityReceived: s.QuantityReceived,
			FullyReceived:    s.FullyReceived,
		})
	}
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		ReceivedDate:    receivedDate,
		ReceivedLines:   lines,
	}
}

// PurchaseOrderCompletedEvent is published when every line is fully received
type PurchaseOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID  `json:"order_id"`
	OrderNumber  string     `json:"order_number"`
	ReceivedDate *time.Time `json:"received_date,omitempty"`
}

// NewPurchaseOrderCompletedEvent creates a new PurchaseOrderCompletedEvent
func NewPurchaseOrderCompletedEvent(order *PurchaseOrder) *PurchaseOrderCompletedEvent {
	return &PurchaseOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCompleted, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		ReceivedDate:    order.ReceivedDate,
	}
}

// PurchaseOrderCancelledEvent is published when an order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason,omitempty"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(order *PurchaseOrder, reason string) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Reason:          reason,
	}
}
