// Package orders provides purchase orders: ordering parts from suppliers
// and receiving them, fully or partially, into the stock ledger.
package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
)

// Status is a purchase order lifecycle state.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusIssued    Status = "ISSUED"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusReceived  Status = "RECEIVED"
	StatusCancelled Status = "CANCELLED"
)

// next is the forward step of the linear order lifecycle.
// RECEIVED is reached only through receipt completion, never via Advance.
var next = map[Status]Status{
	StatusDraft:     StatusIssued,
	StatusIssued:    StatusConfirmed,
	StatusConfirmed: StatusShipped,
}

// IsTerminal reports whether the order can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusReceived || s == StatusCancelled
}

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	ID         id.ID  `db:"id" json:"id"`
	Number     string `db:"number" json:"number"`
	SupplierID id.ID  `db:"supplier_id" json:"supplierId"`
	Status     Status `db:"status" json:"status"`

	Lines []Line `db:"-" json:"lines"`

	// Version backs the conditional receipt commit (optimistic locking).
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Line is one ordered item. QuantityReceived never exceeds QuantityOrdered.
type Line struct {
	ItemID           id.ID           `db:"item_id" json:"itemId"`
	QuantityOrdered  decimal.Decimal `db:"quantity_ordered" json:"quantityOrdered"`
	QuantityReceived decimal.Decimal `db:"quantity_received" json:"quantityReceived"`
}

// Remaining returns the quantity still expected for the line.
func (l Line) Remaining() decimal.Decimal {
	return l.QuantityOrdered.Sub(l.QuantityReceived)
}

// FullyReceived reports whether the whole order arrived.
func (o *PurchaseOrder) FullyReceived() bool {
	for _, l := range o.Lines {
		if l.QuantityReceived.LessThan(l.QuantityOrdered) {
			return false
		}
	}
	return true
}

// ReceiptLine is one submitted line of a goods receipt.
type ReceiptLine struct {
	ItemID   id.ID           `json:"itemId"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Validate checks order invariants at creation time.
func (o *PurchaseOrder) Validate(ctx context.Context) error {
	if id.IsNil(o.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId").
			WithDetail("rule", "required")
	}
	if len(o.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines").
			WithDetail("rule", "required")
	}
	for i, l := range o.Lines {
		if id.IsNil(l.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !l.QuantityOrdered.IsPositive() || !l.QuantityOrdered.IsInteger() {
			return apperror.NewValidation("quantity must be a positive integer").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
