package memory

import (
	"context"
	"sort"
	"sync"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/invoices"
)

// InvoiceStore is an in-memory invoices.Repository.
type InvoiceStore struct {
	mu       sync.Mutex
	invoices map[id.ID]invoices.Invoice
}

// NewInvoiceStore creates an empty invoice store.
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{invoices: make(map[id.ID]invoices.Invoice)}
}

var _ invoices.Repository = (*InvoiceStore)(nil)

func (s *InvoiceStore) Create(ctx context.Context, inv *invoices.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[inv.ID]; ok {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "invoice already exists").
			WithDetail("id", inv.ID.String())
	}
	s.invoices[inv.ID] = *inv
	return nil
}

func (s *InvoiceStore) GetByID(ctx context.Context, invoiceID id.ID) (*invoices.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", invoiceID.String())
	}
	return &inv, nil
}

func (s *InvoiceStore) ListByCustomer(ctx context.Context, customerID id.ID) ([]invoices.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []invoices.Invoice
	for _, inv := range s.invoices {
		if inv.CustomerID == customerID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return out, nil
}
