// Package ledger provides the invariant-protected balance register.
// A Balance is a named quantity adjusted by discrete movements; every
// adjustment must leave the balance within its kind-specific bounds, no
// matter how many adjustments are in flight concurrently.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
)

// Kind identifies what a balance counts.
type Kind string

const (
	// KindStock is units on hand for an inventory item. Never negative.
	KindStock Kind = "STOCK"

	// KindInvoicePaid is the amount paid against an invoice.
	// Between zero and the invoice total.
	KindInvoicePaid Kind = "INVOICE_PAID"
)

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	return k == KindStock || k == KindInvoicePaid
}

// Balance is an invariant-protected quantity for one subject.
// It is mutated only through Service.Adjust; Version backs the
// conditional-commit protocol (optimistic locking).
type Balance struct {
	SubjectID id.ID           `db:"subject_id" json:"subjectId"`
	Kind      Kind            `db:"kind" json:"kind"`
	Current   decimal.Decimal `db:"current" json:"current"`

	// Max is the optional upper bound (invoice total for INVOICE_PAID).
	// Nil means unbounded above.
	Max *decimal.Decimal `db:"max" json:"max,omitempty"`

	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Movement is one signed delta applied to a balance, permanently logged.
type Movement struct {
	ID        id.ID           `db:"id" json:"id"`
	SubjectID id.ID           `db:"subject_id" json:"subjectId"`
	Kind      Kind            `db:"kind" json:"kind"`
	Delta     decimal.Decimal `db:"delta" json:"delta"`
	Reason    string          `db:"reason" json:"reason"`
	ActorID   id.ID           `db:"actor_id" json:"actorId"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// checkBounds validates the proposed balance against the kind's bounds.
// The returned error carries the caller-facing rejection detail.
func (b Balance) checkBounds(delta, proposed decimal.Decimal) error {
	if proposed.IsNegative() {
		if b.Kind == KindStock {
			return apperror.NewInsufficientStock(b.SubjectID.String(), b.Current, delta.Neg())
		}
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"adjustment would drive balance below zero",
		).WithDetail("subject_id", b.SubjectID.String())
	}

	if b.Max != nil && proposed.GreaterThan(*b.Max) {
		if b.Kind == KindInvoicePaid {
			return apperror.NewOverpayment(b.SubjectID.String(), b.Max.Sub(b.Current), delta)
		}
		return apperror.NewBusinessRule(
			apperror.CodeBusinessRule,
			"adjustment would exceed balance upper bound",
		).WithDetail("subject_id", b.SubjectID.String())
	}

	return nil
}
