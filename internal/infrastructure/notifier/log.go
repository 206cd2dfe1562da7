// Package notifier provides notify.Notifier implementations. The real
// channel (mail, SMS) lives behind an external gateway; the default
// implementation just records the attempt in the log.
package notifier

import (
	"context"

	"officina/internal/domain/notify"
	"officina/pkg/logger"
)

// LogNotifier writes notifications to the application log.
type LogNotifier struct{}

// NewLogNotifier creates a new log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

var _ notify.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Send(ctx context.Context, kind notify.Kind, payload notify.StatusChangePayload) (bool, error) {
	logger.Info(ctx, "notification dispatched",
		"kind", kind,
		"ticket_code", payload.TicketCode,
		"status", payload.Status,
	)
	return true, nil
}
