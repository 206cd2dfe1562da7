package handlers

import (
	"github.com/gin-gonic/gin"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/orders"
	"officina/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles HTTP requests for purchase orders.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrderHandler creates a new purchase order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	o, err := req.ToOrder()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), o); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, o.ID.String())
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Advance handles POST /orders/:id/advance
func (h *OrderHandler) Advance(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	o, err := h.service.Advance(c.Request.Context(), orderID, a)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	o, err := h.service.Cancel(c.Request.Context(), orderID, a)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// Receive handles POST /orders/:id/receive
func (h *OrderHandler) Receive(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.ReceiveOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	receipt, err := req.ToReceipt()
	if err != nil {
		h.Error(c, err)
		return
	}

	o, err := h.service.Receive(c.Request.Context(), orderID, receipt, a)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// RegisterRoutes registers purchase order routes.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/advance", h.Advance)
	rg.POST("/:id/cancel", h.Cancel)
	rg.POST("/:id/receive", h.Receive)
}
