package repairs

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"officina/internal/core/actor"
	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/core/tx"
	"officina/internal/domain/catalog"
	"officina/internal/domain/ledger"
	"officina/internal/domain/notify"
	"officina/internal/domain/sequence"
	"officina/internal/domain/workflow"
	"officina/pkg/logger"
)

// transitionAttempts bounds the conditional status commit retry. Two truly
// concurrent transitions for one ticket serialize here: the loser re-reads
// and re-validates against the winner's state.
const transitionAttempts = 3

// Service provides business operations for repair tickets.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	allocator *sequence.Allocator
	catalog   catalog.Catalog
	notifier  notify.Notifier
	txManager tx.Manager
}

// NewService creates a new repair ticket service.
func NewService(
	repo Repository,
	ledgerSvc *ledger.Service,
	allocator *sequence.Allocator,
	cat catalog.Catalog,
	notifier notify.Notifier,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		allocator: allocator,
		catalog:   cat,
		notifier:  notifier,
		txManager: txManager,
	}
}

// Create performs ticket intake: the ticket starts in RECEIVED with a
// day-partitioned code (RIP-YYYYMMDD-0001) and one initial history entry.
func (s *Service) Create(ctx context.Context, t *Ticket, actorID id.ID) error {
	if err := t.Validate(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()

	if t.Code == "" {
		day := sequence.DayPartition(now)
		n, err := s.allocator.Allocate(ctx, sequence.SeriesRepair, day)
		if err != nil {
			return fmt.Errorf("allocate repair code: %w", err)
		}
		t.Code = sequence.FormatRepairCode(day, n)
	}

	t.ID = id.New()
	t.Status = workflow.StatusReceived
	t.Version = 1
	t.CreatedAt = now
	t.History = []StatusEntry{{
		Status:    workflow.StatusReceived,
		ActorID:   actorID,
		Note:      "",
		CreatedAt: now,
	}}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, t)
	})
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}

	logger.Info(ctx, "repair ticket created", "id", t.ID, "code", t.Code)
	return nil
}

// GetByID retrieves a ticket with its status history.
func (s *Service) GetByID(ctx context.Context, ticketID id.ID) (*Ticket, error) {
	return s.repo.GetByID(ctx, ticketID)
}

// AssignTechnician sets the ticket's technician. ADMIN only.
func (s *Service) AssignTechnician(ctx context.Context, ticketID, technicianID id.ID, a actor.Actor) error {
	if a.Role != actor.RoleAdmin {
		return apperror.NewForbidden("only admins may assign technicians")
	}
	if _, err := s.repo.GetByID(ctx, ticketID); err != nil {
		return err
	}
	return s.repo.SetTechnician(ctx, ticketID, technicianID)
}

// TransitionResult reports a successful status change plus the outcome of
// the best-effort customer notification.
type TransitionResult struct {
	Ticket       *Ticket       `json:"ticket"`
	Notification notify.Record `json:"notification"`
}

// Transition moves a ticket to targetStatus on behalf of the actor.
//
// The status update and the history append commit together or not at all.
// The customer notification is dispatched after commit and never rolls the
// transition back: status progression is the source of truth, notification
// is advisory.
func (s *Service) Transition(ctx context.Context, ticketID id.ID, a actor.Actor, targetStatus workflow.Status, note string) (*TransitionResult, error) {
	var t *Ticket

	committed := false
	for attempt := 0; attempt < transitionAttempts && !committed; attempt++ {
		var err error
		t, err = s.repo.GetByID(ctx, ticketID)
		if err != nil {
			return nil, err
		}

		if err := workflow.Authorize(a.Role, t.AssignedTechnicianID, a.ID, t.Status, targetStatus); err != nil {
			return nil, err
		}

		entry := StatusEntry{
			Status:    targetStatus,
			ActorID:   a.ID,
			Note:      note,
			CreatedAt: time.Now().UTC(),
		}

		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			ok, err := s.repo.CommitStatus(ctx, t, targetStatus, entry)
			if err != nil {
				return err
			}
			committed = ok
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("commit status: %w", err)
		}

		if committed {
			t.Status = targetStatus
			t.Version++
			t.History = append(t.History, entry)
		}
	}
	if !committed {
		return nil, apperror.NewConcurrentModification("ticket", ticketID.String())
	}

	record := s.dispatchStatusChange(ctx, t, note)

	logger.Info(ctx, "ticket status changed",
		"id", t.ID,
		"code", t.Code,
		"status", t.Status,
		"notification", record.Status,
	)

	return &TransitionResult{Ticket: t, Notification: record}, nil
}

// dispatchStatusChange sends the STATUS_CHANGE notification, best effort.
func (s *Service) dispatchStatusChange(ctx context.Context, t *Ticket, note string) notify.Record {
	record := notify.Record{
		Kind:      notify.KindStatusChange,
		Status:    notify.DeliverySent,
		CreatedAt: time.Now().UTC(),
	}

	delivered, err := s.notifier.Send(ctx, notify.KindStatusChange, notify.StatusChangePayload{
		TicketID:   t.ID,
		TicketCode: t.Code,
		Status:     string(t.Status),
		Note:       note,
	})
	if err != nil || !delivered {
		record.Status = notify.DeliveryFailed
		logger.Warn(ctx, "status notification failed",
			"ticket_id", t.ID,
			"error", err,
		)
	}

	return record
}

// LinkPart consumes stock for a ticket and records the usage at the
// catalog price captured now. Consumption and the usage record commit
// together; an insufficient balance records nothing.
func (s *Service) LinkPart(ctx context.Context, ticketID, itemID id.ID, quantity decimal.Decimal, a actor.Actor) (*PartUsage, error) {
	if !quantity.IsPositive() || !quantity.IsInteger() {
		return nil, apperror.NewValidation("quantity must be a positive integer").
			WithDetail("field", "quantity").
			WithDetail("rule", "positive_integer")
	}

	t, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Status.IsTerminal() {
		return nil, apperror.NewValidation("cannot link parts to a closed ticket").
			WithDetail("status", string(t.Status))
	}

	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	usage := PartUsage{
		ID:        id.New(),
		TicketID:  ticketID,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: item.Price,
		ActorID:   a.ID,
		CreatedAt: time.Now().UTC(),
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		reason := fmt.Sprintf("ticket:%s", ticketID)
		if _, err := s.ledger.Adjust(ctx, itemID, ledger.KindStock, quantity.Neg(), reason, a.ID); err != nil {
			return err
		}
		return s.repo.AddPartUsage(ctx, usage)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "part linked to ticket",
		"ticket_id", ticketID,
		"item_id", itemID,
		"quantity", quantity.String(),
	)
	return &usage, nil
}

// PartUsages returns the parts consumed by a ticket.
func (s *Service) PartUsages(ctx context.Context, ticketID id.ID) ([]PartUsage, error) {
	return s.repo.PartUsages(ctx, ticketID)
}
