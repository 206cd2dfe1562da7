package invoices

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

// Service provides invoice issuing and payment registration.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	allocator *sequence.Allocator
	txManager tx.Manager
}

// NewService creates a new invoice service.
func NewService(repo Repository, ledgerSvc *ledger.Service, allocator *sequence.Allocator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		allocator: allocator,
		txManager: txManager,
	}
}

// Issue creates an invoice with a year-partitioned number (2026/0001) and
// opens its INVOICE_PAID balance capped at the invoice total.
func (s *Service) Issue(ctx context.Context, inv *Invoice) error {
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()
	year := sequence.YearPartition(now)

	n, err := s.allocator.Allocate(ctx, sequence.SeriesInvoice, year)
	if err != nil {
		return fmt.Errorf("allocate invoice number: %w", err)
	}

	inv.ID = id.New()
	inv.Number = sequence.FormatInvoiceNumber(year, n)
	inv.IssuedAt = now

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, inv); err != nil {
			return err
		}
		max := inv.Total
		return s.ledger.Open(ctx, inv.ID, ledger.KindInvoicePaid, decimal.Zero, &max)
	})
	if err != nil {
		return fmt.Errorf("issue invoice: %w", err)
	}

	logger.Info(ctx, "invoice issued", "id", inv.ID, "number", inv.Number, "total", inv.Total.String())
	return nil
}

// GetByID retrieves an invoice.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	return s.repo.GetByID(ctx, invoiceID)
}

// ListByCustomer returns the customer's invoices.
func (s *Service) ListByCustomer(ctx context.Context, customerID id.ID) ([]Invoice, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// PaymentResult reports the invoice balance after a registered payment.
type PaymentResult struct {
	Invoice     *Invoice        `json:"invoice"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// RegisterPayment records a payment against the invoice. A payment that
// would push the paid amount past the invoice total is rejected whole; no
// partial capture happens.
func (s *Service) RegisterPayment(ctx context.Context, invoiceID id.ID, amount decimal.Decimal, a actor.Actor) (*PaymentResult, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount").
			WithDetail("rule", "positive")
	}

	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	b, err := s.ledger.Adjust(ctx, inv.ID, ledger.KindInvoicePaid, amount, "payment", a.ID)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment registered",
		"invoice_id", inv.ID,
		"amount", amount.String(),
		"paid", b.Current.String(),
	)
	return &PaymentResult{
		Invoice:     inv,
		Paid:        b.Current,
		Outstanding: inv.Total.Sub(b.Current),
	}, nil
}

// Outstanding returns the amount still owed on the invoice.
func (s *Service) Outstanding(ctx context.Context, invoiceID id.ID) (decimal.Decimal, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	paid, err := s.ledger.GetCurrent(ctx, inv.ID, ledger.KindInvoicePaid)
	if err != nil {
		return decimal.Zero, err
	}
	return inv.Total.Sub(paid), nil
}

// Payments returns the invoice's payment movements, oldest first.
func (s *Service) Payments(ctx context.Context, invoiceID id.ID) ([]ledger.Movement, error) {
	if _, err := s.repo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, invoiceID, ledger.KindInvoicePaid)
}
