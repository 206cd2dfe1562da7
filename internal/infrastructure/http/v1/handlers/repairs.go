package handlers

import (
	"github.com/gin-gonic/gin"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/repairs"
	"officina/internal/domain/workflow"
	"officina/internal/infrastructure/http/v1/dto"
)

// RepairHandler handles HTTP requests for repair tickets.
type RepairHandler struct {
	*BaseHandler
	service *repairs.Service
}

// NewRepairHandler creates a new repair ticket handler.
func NewRepairHandler(base *BaseHandler, service *repairs.Service) *RepairHandler {
	return &RepairHandler{BaseHandler: base, service: service}
}

// Create handles POST /repairs
func (h *RepairHandler) Create(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.CreateTicketRequest
	if !h.BindJSON(c, &req) {
		return
	}

	t, err := req.ToTicket()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), t, a.ID); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, t.ID.String())
}

// Get handles GET /repairs/:id
func (h *RepairHandler) Get(c *gin.Context) {
	ticketID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), ticketID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, t)
}

// Transition handles POST /repairs/:id/transition
func (h *RepairHandler) Transition(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	ticketID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Transition(c.Request.Context(), ticketID, a, workflow.Status(req.Status), req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// AssignTechnician handles POST /repairs/:id/technician
func (h *RepairHandler) AssignTechnician(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	ticketID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AssignTechnicianRequest
	if !h.BindJSON(c, &req) {
		return
	}

	technicianID, err := id.Parse(req.TechnicianID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid technicianId format"))
		return
	}

	if err := h.service.AssignTechnician(c.Request.Context(), ticketID, technicianID, a); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.SuccessResponse{Success: true})
}

// LinkPart handles POST /repairs/:id/parts
func (h *RepairHandler) LinkPart(c *gin.Context) {
	a, ok := h.Actor(c)
	if !ok {
		return
	}

	ticketID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.LinkPartRequest
	if !h.BindJSON(c, &req) {
		return
	}

	itemID, err := id.Parse(req.ItemID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	usage, err := h.service.LinkPart(c.Request.Context(), ticketID, itemID, req.Quantity, a)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, usage)
}

// PartUsages handles GET /repairs/:id/parts
func (h *RepairHandler) PartUsages(c *gin.Context) {
	ticketID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	usages, err := h.service.PartUsages(c.Request.Context(), ticketID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": usages})
}

// RegisterRoutes registers repair ticket routes.
func (h *RepairHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/transition", h.Transition)
	rg.POST("/:id/technician", h.AssignTechnician)
	rg.POST("/:id/parts", h.LinkPart)
	rg.GET("/:id/parts", h.PartUsages)
}
