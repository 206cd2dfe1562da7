package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"officina/internal/core/actor"
	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/core/tx"
	"officina/internal/domain/ledger"
	"officina/internal/domain/sequence"
	"officina/pkg/logger"
)

// receiveAttempts bounds the conditional receipt commit retry.
const receiveAttempts = 3

// Service provides business operations for purchase orders.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	allocator *sequence.Allocator
	txManager tx.Manager
}

// NewService creates a new purchase order service.
func NewService(repo Repository, ledgerSvc *ledger.Service, allocator *sequence.Allocator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		allocator: allocator,
		txManager: txManager,
	}
}

// Create stores a new order in DRAFT with a globally numbered ORD code.
func (s *Service) Create(ctx context.Context, o *PurchaseOrder) error {
	if err := o.Validate(ctx); err != nil {
		return err
	}

	n, err := s.allocator.Allocate(ctx, sequence.SeriesOrder, sequence.GlobalPartition)
	if err != nil {
		return fmt.Errorf("allocate order number: %w", err)
	}

	o.ID = id.New()
	o.Number = sequence.FormatOrderNumber(n)
	o.Status = StatusDraft
	o.Version = 1
	o.CreatedAt = time.Now().UTC()
	for i := range o.Lines {
		o.Lines[i].QuantityReceived = decimal.Zero
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, o)
	})
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	logger.Info(ctx, "purchase order created", "id", o.ID, "number", o.Number)
	return nil
}

// GetByID retrieves an order with its lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	return s.repo.GetByID(ctx, orderID)
}

// Advance moves the order one step forward along
// DRAFT -> ISSUED -> CONFIRMED -> SHIPPED.
func (s *Service) Advance(ctx context.Context, orderID id.ID, a actor.Actor) (*PurchaseOrder, error) {
	if a.Role == actor.RoleTechnician {
		return nil, apperror.NewForbidden("technicians may not manage purchase orders")
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	to, ok := next[o.Status]
	if !ok {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, fmt.Sprintf("order in %s cannot advance", o.Status)).
			WithDetail("status", string(o.Status))
	}

	o.Status = to
	committed, err := s.repo.Commit(ctx, o)
	if err != nil {
		return nil, err
	}
	if !committed {
		return nil, apperror.NewConcurrentModification("order", orderID.String())
	}
	o.Version++

	logger.Info(ctx, "purchase order advanced", "id", o.ID, "status", o.Status)
	return o, nil
}

// Cancel cancels an order that has not yet started receiving goods.
// ADMIN only.
func (s *Service) Cancel(ctx context.Context, orderID id.ID, a actor.Actor) (*PurchaseOrder, error) {
	if a.Role != actor.RoleAdmin {
		return nil, apperror.NewForbidden("only admins may cancel purchase orders")
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status.IsTerminal() {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, fmt.Sprintf("order in %s cannot be cancelled", o.Status)).
			WithDetail("status", string(o.Status))
	}
	for _, l := range o.Lines {
		if l.QuantityReceived.IsPositive() {
			return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "order with received goods cannot be cancelled")
		}
	}

	o.Status = StatusCancelled
	committed, err := s.repo.Commit(ctx, o)
	if err != nil {
		return nil, err
	}
	if !committed {
		return nil, apperror.NewConcurrentModification("order", orderID.String())
	}
	o.Version++

	logger.Info(ctx, "purchase order cancelled", "id", o.ID)
	return o, nil
}

// Receive books a full or partial goods receipt against the order.
//
// Each received line increments the stock ledger and the line's received
// quantity in one transaction. The order becomes RECEIVED only once every
// line is complete; a partial receipt leaves the status unchanged.
func (s *Service) Receive(ctx context.Context, orderID id.ID, receipt []ReceiptLine, a actor.Actor) (*PurchaseOrder, error) {
	if len(receipt) == 0 {
		return nil, apperror.NewValidation("at least one receipt line is required").
			WithDetail("field", "lines").
			WithDetail("rule", "required")
	}
	for i, rl := range receipt {
		if !rl.Quantity.IsPositive() || !rl.Quantity.IsInteger() {
			return nil, apperror.NewValidation("quantity must be a positive integer").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	var o *PurchaseOrder

	committed := false
	for attempt := 0; attempt < receiveAttempts && !committed; attempt++ {
		var err error
		o, err = s.repo.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}

		if err := s.checkReceivable(o, receipt); err != nil {
			return nil, err
		}
		// Stock balances are never deleted, so a balance found here still
		// exists at commit time and the positive adjustments below cannot
		// fail. That keeps the commit all-or-nothing on every store.
		for _, rl := range receipt {
			if _, err := s.ledger.GetCurrent(ctx, rl.ItemID, ledger.KindStock); err != nil {
				return nil, err
			}
		}

		applyReceipt(o, receipt)
		if o.FullyReceived() {
			o.Status = StatusReceived
		}

		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			ok, err := s.repo.Commit(ctx, o)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			reason := fmt.Sprintf("po:%s", orderID)
			for _, rl := range receipt {
				if _, err := s.ledger.Adjust(ctx, rl.ItemID, ledger.KindStock, rl.Quantity, reason, a.ID); err != nil {
					return err
				}
			}
			committed = true
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if !committed {
		return nil, apperror.NewConcurrentModification("order", orderID.String())
	}
	o.Version++

	logger.Info(ctx, "goods receipt booked",
		"id", o.ID,
		"number", o.Number,
		"status", o.Status,
	)
	return o, nil
}

// checkReceivable validates receipt lines against the order's current state.
func (s *Service) checkReceivable(o *PurchaseOrder, receipt []ReceiptLine) error {
	switch o.Status {
	case StatusDraft:
		return apperror.NewValidation("order not yet issued").
			WithDetail("status", string(o.Status))
	case StatusCancelled:
		return apperror.NewValidation("order is cancelled").
			WithDetail("status", string(o.Status))
	case StatusReceived:
		return apperror.NewValidation("order already fully received").
			WithDetail("status", string(o.Status))
	}

	// A receipt may name the same item on several lines; the cap applies
	// to the summed quantity, not to each line in isolation.
	totals := make(map[id.ID]decimal.Decimal, len(receipt))
	for i, rl := range receipt {
		line := findLine(o, rl.ItemID)
		if line == nil {
			return apperror.NewValidation("item is not on the order").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1).
				WithDetail("itemId", rl.ItemID.String())
		}
		total := totals[rl.ItemID].Add(rl.Quantity)
		totals[rl.ItemID] = total
		if total.GreaterThan(line.Remaining()) {
			return apperror.NewValidation("quantity exceeds remaining").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1).
				WithDetail("remaining", line.Remaining().String())
		}
	}
	return nil
}

func findLine(o *PurchaseOrder, itemID id.ID) *Line {
	for i := range o.Lines {
		if o.Lines[i].ItemID == itemID {
			return &o.Lines[i]
		}
	}
	return nil
}

func applyReceipt(o *PurchaseOrder, receipt []ReceiptLine) {
	for _, rl := range receipt {
		if line := findLine(o, rl.ItemID); line != nil {
			line.QuantityReceived = line.QuantityReceived.Add(rl.Quantity)
		}
	}
}
