package workflow

import (
	"fmt"

	"officina/internal/core/actor"
	"officina/internal/core/apperror"
	"officina/internal/core/id"
)

// IsAuthorized is the pure role rule for a status change.
//
// ADMIN may always act. A TECHNICIAN may act only on tickets assigned to
// them, and may not use the admin-cancel override: cancelling is allowed
// for a technician only where the base table has a CANCELLED edge
// (AWAITING_APPROVAL). Every other role is rejected.
func IsAuthorized(role actor.Role, assignedTechnicianID *id.ID, actorID id.ID, from, to Status) bool {
	switch role {
	case actor.RoleAdmin:
		return true
	case actor.RoleTechnician:
		if assignedTechnicianID == nil || *assignedTechnicianID != actorID {
			return false
		}
		if to == StatusCancelled && !CanTransition(from, StatusCancelled) {
			// Cancel outside the base table is the admin override.
			return false
		}
		return true
	default:
		return false
	}
}

// Authorize validates a proposed transition end to end: role rule first,
// then graph legality. It touches no state; the ticket service applies the
// change only after Authorize returns nil.
//
// Check order matters: an unauthorized actor gets FORBIDDEN even for an
// edge that would also be illegal, and a non-ADMIN cancel is FORBIDDEN
// regardless of the current state.
func Authorize(role actor.Role, assignedTechnicianID *id.ID, actorID id.ID, from, to Status) error {
	if !to.Valid() {
		return apperror.NewValidation("unknown target status").
			WithDetail("field", "status").
			WithDetail("rule", "invalid_enum")
	}

	if !IsAuthorized(role, assignedTechnicianID, actorID, from, to) {
		return apperror.NewForbidden("not allowed to change this ticket's status")
	}

	if to == StatusCancelled && role == actor.RoleAdmin {
		// Admin override: cancel from any non-terminal state, bypassing the table.
		if from.IsTerminal() {
			return invalidTransition(from, to)
		}
		return nil
	}

	if !CanTransition(from, to) {
		return invalidTransition(from, to)
	}

	return nil
}

func invalidTransition(from, to Status) error {
	return apperror.NewValidation(fmt.Sprintf("Invalid state transition from %s to %s", from, to)).
		WithDetail("from", string(from)).
		WithDetail("to", string(to))
}
