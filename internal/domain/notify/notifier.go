// Package notify provides the outbound notification contract.
// Transport (email, SMS, portal push) is an external collaborator; the core
// only needs a fire-and-forget send with a delivered/failed outcome.
package notify

import (
	"context"
	"time"

	"officina/internal/core/id"
)

// Kind classifies a notification.
type Kind string

// KindStatusChange announces a repair ticket status change to the customer.
const KindStatusChange Kind = "STATUS_CHANGE"

// DeliveryStatus records the outcome of a dispatch attempt.
type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "SENT"
	DeliveryFailed DeliveryStatus = "FAILED"
)

// StatusChangePayload describes the new ticket status to the customer.
type StatusChangePayload struct {
	TicketID   id.ID  `json:"ticketId"`
	TicketCode string `json:"ticketCode"`
	Status     string `json:"status"`
	Note       string `json:"note,omitempty"`
}

// Record is the observability trace of one dispatch. Never blocks or rolls
// back the operation that produced it.
type Record struct {
	Kind      Kind           `json:"kind"`
	Status    DeliveryStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Notifier dispatches notifications. Implementations live at the edge.
type Notifier interface {
	// Send delivers one notification, best effort. A false return (or an
	// error) means the customer was not reached; callers record the
	// failure and move on.
	Send(ctx context.Context, kind Kind, payload StatusChangePayload) (delivered bool, err error)
}
