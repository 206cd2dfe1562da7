package quotes

import (
	"context"
	"time"

	"officina/internal/core/id"
)

// Repository defines persistence for quotes.
type Repository interface {
	// Create stores a new quote.
	Create(ctx context.Context, q *Quote) error

	// GetByID returns the quote or apperror NOT_FOUND.
	GetByID(ctx context.Context, quoteID id.ID) (*Quote, error)

	// ListByTicket returns a ticket's quotes, oldest first.
	ListByTicket(ctx context.Context, ticketID id.ID) ([]Quote, error)

	// SetDecision records the customer's answer.
	SetDecision(ctx context.Context, quoteID id.ID, status Status, decidedAt time.Time) error
}
