package handler

import (
	"github.com/gin-gonic/gin"

	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
)

// IntegrationHandler handles stock deduction requests from external
// systems such as a point of sale. Business failures are reported with
// HTTP 200 and an ERROR status so integrators always get a parseable
// result per requested item.
type IntegrationHandler struct {
	BaseHandler
	deductionService *inventoryapp.ExternalDeductionService
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(deductionService *inventoryapp.ExternalDeductionService) *IntegrationHandler {
	return &IntegrationHandler{deductionService: deductionService}
}

// RegisterRoutes registers integration routes on the given group
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	integration := rg.Group("/integration")
	{
		integration.POST("/stock-deductions", h.Deduct)
		integration.POST("/stock-deductions/batch", h.DeductBatch)
	}
}

// Deduct handles POST /integration/stock-deductions
func (h *IntegrationHandler) Deduct(c *gin.Context) {
	var req inventoryapp.StockDeductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "Invalid X-Actor header")
		return
	}

	result, err := h.deductionService.Deduct(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeductBatch handles POST /integration/stock-deductions/batch.
// Each item is processed independently; a failed item does not stop
// the rest of the batch.
func (h *IntegrationHandler) DeductBatch(c *gin.Context) {
	var reqs []inventoryapp.StockDeductionRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if len(reqs) == 0 {
		h.BadRequest(c, "At least one deduction is required")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "Invalid X-Actor header")
		return
	}

	results, err := h.deductionService.DeductBatch(c.Request.Context(), reqs, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}
