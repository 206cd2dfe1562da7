package invoices

import (
	"context"

	"officina/internal/core/id"
)

// Repository defines persistence for invoices.
type Repository interface {
	// Create stores a new invoice.
	Create(ctx context.Context, inv *Invoice) error

	// GetByID returns the invoice, or apperror NOT_FOUND.
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// ListByCustomer returns the customer's invoices, newest first.
	ListByCustomer(ctx context.Context, customerID id.ID) ([]Invoice, error)
}
