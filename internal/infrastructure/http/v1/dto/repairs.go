package dto

import (
	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/repairs"
)

// CreateTicketRequest is the intake payload.
type CreateTicketRequest struct {
	CustomerID         string `json:"customerId" binding:"required"`
	DeviceType         string `json:"deviceType" binding:"required"`
	DeviceBrand        string `json:"deviceBrand" binding:"required"`
	DeviceModel        string `json:"deviceModel" binding:"required"`
	SerialNumber       string `json:"serialNumber" binding:"required"`
	ProblemDescription string `json:"problemDescription" binding:"required"`
	Accessories        string `json:"accessories"`
	Priority           string `json:"priority"`
}

// ToTicket maps the request to a domain ticket.
func (r CreateTicketRequest) ToTicket() (*repairs.Ticket, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, apperror.NewValidation("invalid customerId format").
			WithDetail("field", "customerId")
	}

	priority := repairs.Priority(r.Priority)
	if r.Priority == "" {
		priority = repairs.PriorityNormal
	}

	return &repairs.Ticket{
		CustomerID:         customerID,
		DeviceType:         r.DeviceType,
		DeviceBrand:        r.DeviceBrand,
		DeviceModel:        r.DeviceModel,
		SerialNumber:       r.SerialNumber,
		ProblemDescription: r.ProblemDescription,
		Accessories:        r.Accessories,
		Priority:           priority,
	}, nil
}

// TransitionRequest asks for a ticket status change.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// AssignTechnicianRequest assigns a technician to a ticket.
type AssignTechnicianRequest struct {
	TechnicianID string `json:"technicianId" binding:"required"`
}

// LinkPartRequest consumes stock for a ticket.
type LinkPartRequest struct {
	ItemID   string          `json:"itemId" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}
