package quotes

import (
	"context"
	"fmt"
	"time"

	"officina/internal/core/actor"
	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/core/tx"
	"officina/internal/domain/repairs"
	"officina/internal/domain/workflow"
	"officina/pkg/logger"
)

// Service provides the quote flow on top of the ticket workflow. Every
// operation first moves the ticket, which enforces role and edge rules;
// the quote record follows the ticket, never the other way around.
type Service struct {
	repo      Repository
	repairs   *repairs.Service
	txManager tx.Manager
}

// NewService creates a new quote service.
func NewService(repo Repository, repairService *repairs.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		repairs:   repairService,
		txManager: txManager,
	}
}

// Issue creates a quote for the ticket and moves it to QUOTE_ISSUED.
// The ticket must be in a state with a legal edge to QUOTE_ISSUED.
func (s *Service) Issue(ctx context.Context, q *Quote, a actor.Actor) (*Quote, error) {
	if err := q.Validate(ctx); err != nil {
		return nil, err
	}

	if _, err := s.repairs.Transition(ctx, q.TicketID, a, workflow.StatusQuoteIssued, "quote issued"); err != nil {
		return nil, err
	}

	q.ID = id.New()
	q.Status = StatusIssued
	q.CreatedAt = time.Now().UTC()
	q.DecidedAt = nil

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("create quote: %w", err)
	}

	logger.Info(ctx, "quote issued",
		"id", q.ID,
		"ticket_id", q.TicketID,
		"amount", q.Amount.String(),
	)
	return q, nil
}

// GetByID retrieves a quote.
func (s *Service) GetByID(ctx context.Context, quoteID id.ID) (*Quote, error) {
	return s.repo.GetByID(ctx, quoteID)
}

// ListByTicket returns the quotes issued for a ticket.
func (s *Service) ListByTicket(ctx context.Context, ticketID id.ID) ([]Quote, error) {
	return s.repo.ListByTicket(ctx, ticketID)
}

// Accept records the customer's approval: the ticket moves to APPROVED
// and the quote is marked ACCEPTED.
func (s *Service) Accept(ctx context.Context, quoteID id.ID, a actor.Actor) (*Quote, error) {
	return s.decide(ctx, quoteID, a, StatusAccepted, workflow.StatusApproved, "quote accepted")
}

// Decline records the customer's refusal: the ticket is cancelled and
// the quote is marked DECLINED.
func (s *Service) Decline(ctx context.Context, quoteID id.ID, a actor.Actor) (*Quote, error) {
	return s.decide(ctx, quoteID, a, StatusDeclined, workflow.StatusCancelled, "quote declined")
}

func (s *Service) decide(ctx context.Context, quoteID id.ID, a actor.Actor, decision Status, target workflow.Status, note string) (*Quote, error) {
	q, err := s.repo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q.Decided() {
		return nil, apperror.NewValidation("quote already decided").
			WithDetail("status", string(q.Status))
	}

	if _, err := s.repairs.Transition(ctx, q.TicketID, a, target, note); err != nil {
		return nil, err
	}

	decidedAt := time.Now().UTC()
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDecision(ctx, q.ID, decision, decidedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("record quote decision: %w", err)
	}

	q.Status = decision
	q.DecidedAt = &decidedAt

	logger.Info(ctx, "quote decided",
		"id", q.ID,
		"ticket_id", q.TicketID,
		"decision", decision,
	)
	return q, nil
}
