// Package workflow defines the repair ticket status graph and the
// authorization rule for moving through it. Both are pure: the transition
// table and the role rule are independently testable, and the ticket
// service composes them with persistence and notification.
package workflow

// Status is a repair ticket lifecycle state.
type Status string

const (
	StatusReceived         Status = "RECEIVED"
	StatusDiagnosing       Status = "DIAGNOSING"
	StatusQuoteIssued      Status = "QUOTE_ISSUED"
	StatusAwaitingApproval Status = "AWAITING_APPROVAL"
	StatusApproved         Status = "APPROVED"
	StatusAwaitingParts    Status = "AWAITING_PARTS"
	StatusInProgress       Status = "IN_PROGRESS"
	StatusCompleted        Status = "COMPLETED"
	StatusDelivered        Status = "DELIVERED"
	StatusCancelled        Status = "CANCELLED"
)

// transitions is the base transition table. Directed; no other edges are legal.
var transitions = map[Status][]Status{
	StatusReceived:         {StatusDiagnosing},
	StatusDiagnosing:       {StatusReceived, StatusInProgress, StatusQuoteIssued},
	StatusQuoteIssued:      {StatusAwaitingApproval},
	StatusAwaitingApproval: {StatusApproved, StatusCancelled},
	StatusApproved:         {StatusAwaitingParts, StatusInProgress},
	StatusAwaitingParts:    {StatusInProgress},
	StatusInProgress:       {StatusCompleted},
	StatusCompleted:        {StatusDelivered},
}

// Valid reports whether the status is a known state.
func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusDiagnosing, StatusQuoteIssued, StatusAwaitingApproval,
		StatusApproved, StatusAwaitingParts, StatusInProgress, StatusCompleted,
		StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions may leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether from→to is in the base transition table.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
