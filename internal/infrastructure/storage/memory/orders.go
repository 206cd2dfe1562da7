package memory

import (
	"context"
	"sync"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/orders"
)

// OrderStore is an in-memory orders.Repository.
type OrderStore struct {
	mu     sync.Mutex
	orders map[id.ID]*orders.PurchaseOrder
}

// NewOrderStore creates an empty purchase order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[id.ID]*orders.PurchaseOrder)}
}

var _ orders.Repository = (*OrderStore)(nil)

func cloneOrder(o *orders.PurchaseOrder) *orders.PurchaseOrder {
	out := *o
	out.Lines = make([]orders.Line, len(o.Lines))
	copy(out.Lines, o.Lines)
	return &out
}

func (s *OrderStore) Create(ctx context.Context, o *orders.PurchaseOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; ok {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "order already exists").
			WithDetail("id", o.ID.String())
	}
	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, orderID id.ID) (*orders.PurchaseOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID.String())
	}
	return cloneOrder(o), nil
}

func (s *OrderStore) Commit(ctx context.Context, o *orders.PurchaseOrder) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[o.ID]
	if !ok {
		return false, apperror.NewNotFound("order", o.ID.String())
	}
	if stored.Version != o.Version {
		return false, nil
	}

	updated := cloneOrder(o)
	updated.Version = stored.Version + 1
	s.orders[o.ID] = updated
	return true, nil
}
