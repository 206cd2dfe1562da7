package notify

import "context"

// MockNotifier is a test implementation of Notifier.
// Use in unit tests to avoid real transport dependencies.
type MockNotifier struct {
	SendFunc func(ctx context.Context, kind Kind, payload StatusChangePayload) (bool, error)

	// Sent collects every payload passed to Send when SendFunc is nil.
	Sent []StatusChangePayload
}

// Send implements Notifier.
func (m *MockNotifier) Send(ctx context.Context, kind Kind, payload StatusChangePayload) (bool, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, kind, payload)
	}
	m.Sent = append(m.Sent, payload)
	return true, nil
}

// Ensure compile-time interface compliance.
var _ Notifier = (*MockNotifier)(nil)
