package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
)

// StockHandler handles stock adjustment and movement history endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// RegisterRoutes registers stock routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/products/:id/stock")
	{
		stock.POST("/increase", h.Increase)
		stock.POST("/decrease", h.Decrease)
		stock.GET("/movements", h.Movements)
	}
}

// Increase handles POST /products/:id/stock/increase
func (h *StockHandler) Increase(c *gin.Context) {
	h.adjust(c, h.stockService.IncreaseStock)
}

// Decrease handles POST /products/:id/stock/decrease
func (h *StockHandler) Decrease(c *gin.Context) {
	h.adjust(c, h.stockService.DecreaseStock)
}

type stockAdjustFunc func(ctx context.Context, productID uuid.UUID, req inventoryapp.StockAdjustmentRequest, actor *uuid.UUID) (*inventoryapp.MovementResponse, error)

func (h *StockHandler) adjust(c *gin.Context, adjust stockAdjustFunc) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var req inventoryapp.StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "Invalid X-Actor header")
		return
	}

	movement, err := adjust(c.Request.Context(), productID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, movement)
}

// Movements handles GET /products/:id/stock/movements
func (h *StockHandler) Movements(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return
	}

	var filter inventoryapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.stockService.GetMovements(c.Request.Context(), productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
