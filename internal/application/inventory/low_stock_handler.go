package inventory

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
)

// LowStockHandler watches stock movement events and raises an alert
// when a product's balance falls below its configured minimum.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier LowStockNotifier
}

// LowStockNotifier is the interface for delivering low stock alerts.
// Implementations can support different channels.
type LowStockNotifier interface {
	// Notify delivers a low stock alert
	Notify(ctx context.Context, alert LowStockAlert) error
}

// LowStockAlert describes a product whose balance dropped below minimum
type LowStockAlert struct {
	ProductID    string `json:"product_id"`
	ProductCode  string `json:"product_code"`
	CurrentStock int    `json:"current_stock"`
}

// NewLowStockHandler creates a new handler for low stock conditions
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockHandler{logger: logger}
}

// SetNotifier sets the alert notifier (optional; alerts are always logged)
func (h *LowStockHandler) SetNotifier(notifier LowStockNotifier) {
	h.notifier = notifier
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{inventory.EventTypeStockDecreased, inventory.EventTypeStockIncreased}
}

// Handle processes a stock movement event
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	alert, ok := alertFromEvent(event)
	if !ok {
		return nil
	}

	h.logger.Warn("product stock below minimum",
		zap.String("product_id", alert.ProductID),
		zap.String("product_code", alert.ProductCode),
		zap.Int("current_stock", alert.CurrentStock),
	)

	if h.notifier != nil {
		if err := h.notifier.Notify(ctx, alert); err != nil {
			h.logger.Error("failed to deliver low stock alert",
				zap.String("product_code", alert.ProductCode),
				zap.Error(err),
			)
		}
	}
	return nil
}

func alertFromEvent(event shared.DomainEvent) (LowStockAlert, bool) {
	switch e := event.(type) {
	case *inventory.StockDecreasedEvent:
		if !e.BelowMinimum {
			return LowStockAlert{}, false
		}
		return LowStockAlert{
			ProductID:    e.ProductID.String(),
			ProductCode:  e.ProductCode,
			CurrentStock: e.BalanceAfter,
		}, true
	case *inventory.StockIncreasedEvent:
		if !e.BelowMinimum {
			return LowStockAlert{}, false
		}
		return LowStockAlert{
			ProductID:    e.ProductID.String(),
			ProductCode:  e.ProductCode,
			CurrentStock: e.BalanceAfter,
		}, true
	}
	return LowStockAlert{}, false
}

// Ensure LowStockHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockHandler)(nil)
