package orders

import (
	"context"

	"officina/internal/core/id"
)

// Repository defines persistence for purchase orders.
type Repository interface {
	// Create stores a new order with its lines.
	Create(ctx context.Context, o *PurchaseOrder) error

	// GetByID returns the order with lines, or apperror NOT_FOUND.
	GetByID(ctx context.Context, orderID id.ID) (*PurchaseOrder, error)

	// Commit writes the order's status and line quantities, if and only if
	// the stored version still equals o.Version. Returns false when another
	// writer committed first.
	Commit(ctx context.Context, o *PurchaseOrder) (bool, error)
}
