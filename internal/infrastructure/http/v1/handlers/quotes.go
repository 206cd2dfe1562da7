package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"officina/internal/core/actor"
	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/quotes"
	"officina/internal/infrastructure/http/v1/dto"
)

// QuoteHandler handles HTTP requests for repair quotes.
type QuoteHandler struct {
	*BaseHandler
	service *quotes.Service
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(base *BaseHandler, service *quotes.Service) *QuoteHandler {
	return &QuoteHandler{BaseHandler: base, service: service}
}

// Issue handles POST /quotes
func (h *QuoteHandler) Issue(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.IssueQuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}

	q, err := req.ToQuote()
	if err != nil {
		h.Error(c, err)
		return
	}

	issued, err := h.service.Issue(c.Request.Context(), q, a)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, issued.ID.String())
}

// Get handles GET /quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	quoteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	q, err := h.service.GetByID(c.Request.Context(), quoteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, q)
}

// Accept handles POST /quotes/:id/accept
func (h *QuoteHandler) Accept(c *gin.Context) {
	h.decide(c, h.service.Accept)
}

// Decline handles POST /quotes/:id/decline
func (h *QuoteHandler) Decline(c *gin.Context) {
	h.decide(c, h.service.Decline)
}

func (h *QuoteHandler) decide(c *gin.Context, fn func(context.Context, id.ID, actor.Actor) (*quotes.Quote, error)) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	quoteID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	q, err := fn(c.Request.Context(), quoteID, a)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, q)
}

// RegisterRoutes registers quote routes.
func (h *QuoteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Issue)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/accept", h.Accept)
	rg.POST("/:id/decline", h.Decline)
}
