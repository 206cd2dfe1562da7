package handlers

import (
	"github.com/gin-gonic/gin"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/invoices"
	"officina/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	*BaseHandler
	service *invoices.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoices.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service}
}

// Issue handles POST /invoices
func (h *InvoiceHandler) Issue(c *gin.Context) {
	var req dto.IssueInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := req.ToInvoice()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Issue(c.Request.Context(), inv); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, inv.ID.String())
}

// Get handles GET /invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	outstanding, err := h.service.Outstanding(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"invoice":     inv,
		"outstanding": outstanding,
	})
}

// RegisterPayment handles POST /invoices/:id/payments
func (h *InvoiceHandler) RegisterPayment(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.RegisterPayment(c.Request.Context(), invoiceID, req.Amount, a)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Payments handles GET /invoices/:id/payments
func (h *InvoiceHandler) Payments(c *gin.Context) {
	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	movements, err := h.service.Payments(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": movements})
}

// ListByCustomer handles GET /invoices?customerId=...
func (h *InvoiceHandler) ListByCustomer(c *gin.Context) {
	customerID, err := id.Parse(c.Query("customerId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid customerId format"))
		return
	}

	list, err := h.service.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": list})
}

// RegisterRoutes registers invoice routes.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Issue)
	rg.GET("", h.ListByCustomer)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/payments", h.RegisterPayment)
	rg.GET("/:id/payments", h.Payments)
}
