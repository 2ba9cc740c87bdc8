package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/domain/trade"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// Header names used across handlers
const (
	HeaderRequestID      = "X-Request-ID"
	HeaderActor          = "X-Actor"
	HeaderIdempotencyKey = "X-Idempotency-Key"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID set by the RequestID middleware
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader(HeaderRequestID)
}

// getActor extracts the acting user from the X-Actor header.
// Returns nil when the header is absent so mutations are recorded
// as performed by the system.
func getActor(c *gin.Context) (*uuid.UUID, error) {
	actorStr := c.GetHeader(HeaderActor)
	if actorStr == "" {
		return nil, nil
	}
	actor, err := uuid.Parse(actorStr)
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts domain errors to HTTP responses. Typed errors
// carry structured details; plain domain errors are mapped by code.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	if stockErr, ok := inventory.AsInsufficientStock(err); ok {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponseWithDetails(
			dto.ErrCodeInsufficientStock, stockErr.Error(), requestID,
			map[string]interface{}{
				"product_id":   stockErr.ProductID,
				"product_code": stockErr.ProductCode,
				"available":    stockErr.Available,
				"requested":    stockErr.Requested,
			},
		))
		return
	}

	if receiptErr, ok := trade.AsInvalidReceiptQuantity(err); ok {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponseWithDetails(
			dto.ErrCodeInvalidReceiptQuantity, receiptErr.Error(), requestID,
			map[string]interface{}{
				"line_id":   receiptErr.LineID,
				"ordered":   receiptErr.Ordered,
				"received":  receiptErr.Received,
				"requested": receiptErr.Requested,
			},
		))
		return
	}

	if stateErr, ok := trade.AsOrderStateConflict(err); ok {
		c.JSON(http.StatusConflict, dto.NewErrorResponseWithDetails(
			dto.ErrCodeOrderStateConflict, stateErr.Error(), requestID,
			map[string]interface{}{
				"order_id": stateErr.OrderID,
				"status":   string(stateErr.Status),
			},
		))
		return
	}

	if opErr, ok := trade.AsInvalidOrderOperation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponseWithDetails(
			dto.ErrCodeInvalidOrderOperation, opErr.Error(), requestID,
			map[string]interface{}{
				"order_id": opErr.OrderID,
			},
		))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code),
			dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}
