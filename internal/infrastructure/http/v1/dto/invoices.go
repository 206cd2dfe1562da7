package dto

import (
	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/invoices"
)

// IssueInvoiceRequest issues a new invoice.
type IssueInvoiceRequest struct {
	CustomerID string          `json:"customerId" binding:"required"`
	TicketID   string          `json:"ticketId"`
	Total      decimal.Decimal `json:"total" binding:"required"`
}

// ToInvoice maps the request to a domain invoice.
func (r IssueInvoiceRequest) ToInvoice() (*invoices.Invoice, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, apperror.NewValidation("invalid customerId format").
			WithDetail("field", "customerId")
	}

	inv := &invoices.Invoice{
		CustomerID: customerID,
		Total:      r.Total,
	}
	if r.TicketID != "" {
		ticketID, err := id.Parse(r.TicketID)
		if err != nil {
			return nil, apperror.NewValidation("invalid ticketId format").
				WithDetail("field", "ticketId")
		}
		inv.TicketID = &ticketID
	}
	return inv, nil
}

// PaymentRequest registers a payment against an invoice.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}
