package dto

import (
	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/quotes"
)

// IssueQuoteRequest creates a quote for a repair ticket.
type IssueQuoteRequest struct {
	TicketID    string          `json:"ticketId" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// ToQuote maps the request to a domain quote.
func (r IssueQuoteRequest) ToQuote() (*quotes.Quote, error) {
	ticketID, err := id.Parse(r.TicketID)
	if err != nil {
		return nil, apperror.NewValidation("invalid ticketId format").
			WithDetail("field", "ticketId")
	}

	return &quotes.Quote{
		TicketID:    ticketID,
		Amount:      r.Amount,
		Description: r.Description,
	}, nil
}
