package handlers

import (
	"github.com/gin-gonic/gin"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/ledger"
	"officina/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for item stock balances.
type StockHandler struct {
	*BaseHandler
	ledger *ledger.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, ledgerSvc *ledger.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, ledger: ledgerSvc}
}

// Open handles POST /stock/:itemId/open
func (h *StockHandler) Open(c *gin.Context) {
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	var req dto.OpenStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.ledger.Open(c.Request.Context(), itemID, ledger.KindStock, req.Initial, nil); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, itemID.String())
}

// GetBalance handles GET /stock/:itemId
func (h *StockHandler) GetBalance(c *gin.Context) {
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	current, err := h.ledger.GetCurrent(c.Request.Context(), itemID, ledger.KindStock)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"itemId":   itemID.String(),
		"quantity": current,
	})
}

// Adjust handles POST /stock/:itemId/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.ledger.Adjust(c.Request.Context(), itemID, ledger.KindStock, req.Delta, req.Reason, a.ID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, b)
}

// Movements handles GET /stock/:itemId/movements
func (h *StockHandler) Movements(c *gin.Context) {
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	movements, err := h.ledger.History(c.Request.Context(), itemID, ledger.KindStock)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": movements})
}

// RegisterRoutes registers stock routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:itemId/open", h.Open)
	rg.GET("/:itemId", h.GetBalance)
	rg.POST("/:itemId/adjust", h.Adjust)
	rg.GET("/:itemId/movements", h.Movements)
}
