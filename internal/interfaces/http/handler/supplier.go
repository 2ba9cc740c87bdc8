package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	partnerapp "github.com/stockledger/backend/internal/application/partner"
)

// SupplierHandler handles supplier API endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService *partnerapp.SupplierService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// RegisterRoutes registers supplier routes on the given group
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suppliers := rg.Group("/suppliers")
	{
		suppliers.POST("", h.Create)
		suppliers.GET("", h.List)
		suppliers.GET("/:id", h.GetByID)
		suppliers.PUT("/:id", h.Update)
		suppliers.POST("/:id/activate", h.Activate)
		suppliers.POST("/:id/deactivate", h.Deactivate)
	}
}

// Create handles POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "Invalid X-Actor header")
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, supplier)
}

// GetByID handles GET /suppliers/:id
func (h *SupplierHandler) GetByID(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	supplier, err := h.supplierService.GetByID(c.Request.Context(), supplierID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}

// List handles GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	var filter partnerapp.SupplierListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update handles PUT /suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	var req partnerapp.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "Invalid X-Actor header")
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), supplierID, req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}

// Activate handles POST /suppliers/:id/activate
func (h *SupplierHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.supplierService.Activate)
}

// Deactivate handles POST /suppliers/:id/deactivate
func (h *SupplierHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, h.supplierService.Deactivate)
}

func (h *SupplierHandler) changeStatus(
	c *gin.Context,
	change func(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*partnerapp.SupplierResponse, error),
) {
	supplierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID format")
		return
	}

	actor, err := getActor(c)
	if err != nil {
		h.BadRequest(c, "Invalid X-Actor header")
		return
	}

	supplier, err := change(c.Request.Context(), supplierID, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, supplier)
}
