package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/trade"
)

// CreateOrderLineRequest represents one line of a new purchase order
type CreateOrderLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest represents the request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID                `json:"supplier_id" binding:"required"`
	ExpectedDate *time.Time               `json:"expected_date"`
	Notes        string                   `json:"notes" binding:"max=1000"`
	Lines        []CreateOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CancelPurchaseOrderRequest represents the request to cancel an order
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ReceiveLineRequest represents one line of a receiving batch.
// A zero quantity is accepted and treated as a no-op for that line.
type ReceiveLineRequest struct {
	LineID   uuid.UUID `json:"orderDetailId" binding:"required"`
	Quantity int       `json:"quantityReceived" binding:"min=0"`
}

// ReceiveRequest represents a receiving batch against a purchase order.
// The received date defaults to the processing time when absent, so a
// back-dated delivery can be recorded with an explicit receivedDate.
type ReceiveRequest struct {
	ReceivedDate   *time.Time           `json:"receivedDate"`
	Notes          string               `json:"notes" binding:"max=500"`
	IdempotencyKey string               `json:"idempotencyKey" binding:"max=100"`
	Lines          []ReceiveLineRequest `json:"receivedDetails" binding:"required,min=1,dive"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	Status     string `form:"status"`
	SupplierID string `form:"supplier_id"`
	Overdue    bool   `form:"overdue"`
}

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductCode       string          `json:"product_code"`
	ProductName       string          `json:"product_name"`
	QuantityOrdered   int             `json:"quantity_ordered"`
	QuantityReceived  int             `json:"quantity_received"`
	QuantityPending   int             `json:"quantity_pending"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	FullyReceived     bool            `json:"fully_received"`
	PartiallyReceived bool            `json:"partially_received"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	SupplierID   uuid.UUID           `json:"supplier_id"`
	SupplierName string              `json:"supplier_name"`
	Status       string              `json:"status"`
	OrderDate    time.Time           `json:"order_date"`
	ExpectedDate *time.Time          `json:"expected_date,omitempty"`
	ReceivedDate *time.Time          `json:"received_date,omitempty"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Notes        string              `json:"notes,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	Overdue      bool                `json:"overdue"`
	Lines        []OrderLineResponse `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ReceiveLineResult represents the outcome of one line of a receiving batch
type ReceiveLineResult struct {
	LineID                     uuid.UUID `json:"orderDetailId"`
	ProductID                  uuid.UUID `json:"productId"`
	ProductCode                string    `json:"productCode"`
	ProductName                string    `json:"productName"`
	QuantityOrdered            int       `json:"quantityOrdered"`
	QuantityPreviouslyReceived int       `json:"quantityPreviouslyReceived"`
	QuantityReceived           int       `json:"quantityReceived"`
	QuantityTotalReceived      int       `json:"quantityTotalReceived"`
	QuantityPending            int       `json:"quantityPending"`
	FullyReceived              bool      `json:"fullyReceived"`
}

// ReceiveResult represents the outcome of a receiving batch
type ReceiveResult struct {
	OrderID       uuid.UUID           `json:"orderId"`
	OrderNumber   string              `json:"orderNumber"`
	Status        string              `json:"status"`
	ReceivedDate  *time.Time          `json:"receivedDate"`
	ProcessedAt   time.Time           `json:"processedAt"`
	Notes         string              `json:"notes"`
	Lines         []ReceiveLineResult `json:"receivedDetails"`
	FullyReceived bool                `json:"fullyReceived"`
}

// ToOrderLineResponse converts a domain OrderLine to a response DTO
func ToOrderLineResponse(l *trade.OrderLine) OrderLineResponse {
	return OrderLineResponse{
		ID:                l.ID,
		ProductID:         l.ProductID,
		ProductCode:       l.ProductCode,
		ProductName:       l.ProductName,
		QuantityOrdered:   l.QuantityOrdered,
		QuantityReceived:  l.QuantityReceived,
		QuantityPending:   l.PendingQuantity(),
		UnitPrice:         l.UnitPrice,
		TotalPrice:        l.TotalPrice,
		FullyReceived:     l.IsFullyReceived(),
		PartiallyReceived: l.IsPartiallyReceived(),
	}
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response DTO
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		lines = append(lines, ToOrderLineResponse(&o.Lines[i]))
	}
	return PurchaseOrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		SupplierID:   o.SupplierID,
		SupplierName: o.SupplierName,
		Status:       string(o.Status),
		OrderDate:    o.OrderDate,
		ExpectedDate: o.ExpectedDate,
		ReceivedDate: o.ReceivedDate,
		TotalAmount:  o.TotalAmount,
		Notes:        o.Notes,
		CancelReason: o.CancelReason,
		Overdue:      o.IsOverdue(time.Now()),
		Lines:        lines,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// ToPurchaseOrderResponses converts a slice of domain PurchaseOrders to response DTOs
func ToPurchaseOrderResponses(orders []trade.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToPurchaseOrderResponse(&orders[i]))
	}
	return responses
}

// ToReceiveResult converts domain receipt summaries to a result DTO
func ToReceiveResult(o *trade.PurchaseOrder, summaries []trade.ReceivedLineSummary, processedAt time.Time, notes string) ReceiveResult {
	lines := make([]ReceiveLineResult, 0, len(summaries))
	for _, s := range summaries {
		lines = append(lines, ReceiveLineResult{
			LineID:                     s.LineID,
			ProductID:                  s.ProductID,
			ProductCode:                s.ProductCode,
			ProductName:                s.ProductName,
			QuantityOrdered:            s.QuantityOrdered,
			QuantityPreviouslyReceived: s.QuantityPreviouslyReceived,
			QuantityReceived:           s.QuantityReceived,
			QuantityTotalReceived:      s.QuantityTotalReceived,
			QuantityPending:            s.QuantityPending,
			FullyReceived:              s.FullyReceived,
		})
	}
	return ReceiveResult{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		ReceivedDate:  o.ReceivedDate,
		ProcessedAt:   processedAt,
		Notes:         notes,
		Lines:         lines,
		FullyReceived: o.IsFullyReceived(),
	}
}
