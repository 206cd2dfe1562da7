// Package invoices provides customer invoices and payment registration
// against the INVOICE_PAID ledger.
package invoices

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
)

// Invoice is an issued customer invoice. The amount paid lives in the
// balance ledger under the invoice's id, capped at Total.
type Invoice struct {
	ID         id.ID           `db:"id" json:"id"`
	Number     string          `db:"number" json:"number"`
	CustomerID id.ID           `db:"customer_id" json:"customerId"`
	TicketID   *id.ID          `db:"ticket_id" json:"ticketId,omitempty"`
	Total      decimal.Decimal `db:"total" json:"total"`
	IssuedAt   time.Time       `db:"issued_at" json:"issuedAt"`
}

// Validate checks issuing invariants.
func (inv *Invoice) Validate(ctx context.Context) error {
	if id.IsNil(inv.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId").
			WithDetail("rule", "required")
	}
	if !inv.Total.IsPositive() {
		return apperror.NewValidation("total must be positive").
			WithDetail("field", "total").
			WithDetail("rule", "positive")
	}
	return nil
}
