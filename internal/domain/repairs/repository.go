package repairs

import (
	"context"

	"officina/internal/core/id"
	"officina/internal/domain/workflow"
)

// Repository defines persistence for repair tickets.
type Repository interface {
	// Create stores a new ticket with its initial history entry.
	Create(ctx context.Context, t *Ticket) error

	// GetByID returns the ticket with its full status history,
	// or apperror NOT_FOUND.
	GetByID(ctx context.Context, ticketID id.ID) (*Ticket, error)

	// CommitStatus sets the new status and appends the history entry in one
	// atomic write, if and only if the stored version still equals
	// t.Version. Returns false when another writer committed first.
	CommitStatus(ctx context.Context, t *Ticket, to workflow.Status, entry StatusEntry) (bool, error)

	// SetTechnician assigns or reassigns the ticket's technician.
	SetTechnician(ctx context.Context, ticketID id.ID, technicianID id.ID) error

	// AddPartUsage appends a part consumption record.
	AddPartUsage(ctx context.Context, usage PartUsage) error

	// PartUsages returns the consumption records for a ticket, oldest first.
	PartUsages(ctx context.Context, ticketID id.ID) ([]PartUsage, error)
}
