// Package repairs provides the repair ticket aggregate: intake, the guarded
// status workflow, and part consumption against the stock ledger.
package repairs

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/workflow"
)

// Priority is the handling priority recorded at intake.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether the priority is a known value.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

// Ticket is a repair ticket. Status moves only through Service.Transition;
// History is append-only and its last entry always matches Status.
type Ticket struct {
	ID   id.ID  `db:"id" json:"id"`
	Code string `db:"code" json:"code"`

	CustomerID           id.ID  `db:"customer_id" json:"customerId"`
	AssignedTechnicianID *id.ID `db:"assigned_technician_id" json:"assignedTechnicianId,omitempty"`

	Status workflow.Status `db:"status" json:"status"`

	DeviceType         string   `db:"device_type" json:"deviceType"`
	DeviceBrand        string   `db:"device_brand" json:"deviceBrand"`
	DeviceModel        string   `db:"device_model" json:"deviceModel"`
	SerialNumber       string   `db:"serial_number" json:"serialNumber"`
	ProblemDescription string   `db:"problem_description" json:"problemDescription"`
	Accessories        string   `db:"accessories" json:"accessories"`
	Priority           Priority `db:"priority" json:"priority"`

	History []StatusEntry `db:"-" json:"statusHistory"`

	// Version backs the conditional status commit (optimistic locking).
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// StatusEntry is one row of the append-only status history.
type StatusEntry struct {
	Status    workflow.Status `db:"status" json:"status"`
	ActorID   id.ID           `db:"actor_id" json:"actorId"`
	Note      string          `db:"note" json:"note"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// PartUsage records a part consumed by a ticket. UnitPrice is snapshotted at
// link time and never re-read from the catalog.
type PartUsage struct {
	ID        id.ID           `db:"id" json:"id"`
	TicketID  id.ID           `db:"ticket_id" json:"ticketId"`
	ItemID    id.ID           `db:"item_id" json:"itemId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
	ActorID   id.ID           `db:"actor_id" json:"actorId"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Validate checks intake invariants.
func (t *Ticket) Validate(ctx context.Context) error {
	if id.IsNil(t.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId").
			WithDetail("rule", "required")
	}

	required := []struct {
		field string
		value string
	}{
		{"deviceType", t.DeviceType},
		{"deviceBrand", t.DeviceBrand},
		{"deviceModel", t.DeviceModel},
		{"serialNumber", t.SerialNumber},
		{"problemDescription", t.ProblemDescription},
	}
	for _, f := range required {
		if f.value == "" {
			return apperror.NewValidation(f.field + " is required").
				WithDetail("field", f.field).
				WithDetail("rule", "required")
		}
	}

	if !t.Priority.Valid() {
		return apperror.NewValidation("unknown priority").
			WithDetail("field", "priority").
			WithDetail("rule", "invalid_enum")
	}

	return nil
}
