package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/quotes"
)

// QuoteStore is an in-memory quotes.Repository.
type QuoteStore struct {
	mu     sync.Mutex
	quotes map[id.ID]quotes.Quote
}

// NewQuoteStore creates an empty quote store.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{quotes: make(map[id.ID]quotes.Quote)}
}

var _ quotes.Repository = (*QuoteStore)(nil)

func (s *QuoteStore) Create(ctx context.Context, q *quotes.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[q.ID]; ok {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "quote already exists").
			WithDetail("id", q.ID.String())
	}
	s.quotes[q.ID] = *q
	return nil
}

func (s *QuoteStore) GetByID(ctx context.Context, quoteID id.ID) (*quotes.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[quoteID]
	if !ok {
		return nil, apperror.NewNotFound("quote", quoteID.String())
	}
	return &q, nil
}

func (s *QuoteStore) ListByTicket(ctx context.Context, ticketID id.ID) ([]quotes.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []quotes.Quote
	for _, q := range s.quotes {
		if q.TicketID == ticketID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *QuoteStore) SetDecision(ctx context.Context, quoteID id.ID, status quotes.Status, decidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[quoteID]
	if !ok {
		return apperror.NewNotFound("quote", quoteID.String())
	}
	q.Status = status
	q.DecidedAt = &decidedAt
	s.quotes[quoteID] = q
	return nil
}
