// Package quotes manages repair quotes: the estimate issued to the
// customer before work is approved. A quote drives its ticket through
// QUOTE_ISSUED and the customer's accept/decline decision.
package quotes

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
)

// Status is the quote's own lifecycle, separate from the ticket's.
type Status string

const (
	StatusIssued   Status = "ISSUED"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

// Quote is a priced repair estimate for one ticket.
type Quote struct {
	ID          id.ID           `db:"id" json:"id"`
	TicketID    id.ID           `db:"ticket_id" json:"ticketId"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	Status      Status          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`

	// DecidedAt is set when the customer accepts or declines.
	DecidedAt *time.Time `db:"decided_at" json:"decidedAt,omitempty"`
}

// Decided reports whether the customer already answered.
func (q *Quote) Decided() bool {
	return q.Status != StatusIssued
}

// Validate checks the quote before issuing.
func (q *Quote) Validate(ctx context.Context) error {
	if !q.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount").
			WithDetail("rule", "positive")
	}
	return nil
}
