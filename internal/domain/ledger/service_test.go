package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/ledger"
	"officina/internal/infrastructure/storage/memory"
)

func newService() *ledger.Service {
	return ledger.NewService(memory.NewLedgerStore())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAdjust_StockHappyPath(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	itemID := id.New()
	actorID := id.New()

	if err := svc.Open(ctx, itemID, ledger.KindStock, dec("10"), nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	b, err := svc.Adjust(ctx, itemID, ledger.KindStock, dec("-7"), "ticket:x", actorID)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if !b.Current.Equal(dec("3")) {
		t.Errorf("expected balance 3, got %s", b.Current)
	}

	movements, err := svc.History(ctx, itemID, ledger.KindStock)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if !movements[0].Delta.Equal(dec("-7")) {
		t.Errorf("expected delta -7, got %s", movements[0].Delta)
	}
}

func TestAdjust_StockNeverNegative(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	itemID := id.New()
	actorID := id.New()

	if err := svc.Open(ctx, itemID, ledger.KindStock, dec("10"), nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	// Two callers each try to take 7 from a stock of 10. Exactly one may win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Adjust(ctx, itemID, ledger.KindStock, dec("-7"), "ticket:x", actorID)
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperror.IsCode(err, apperror.CodeInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Errorf("expected 1 success and 1 rejection, got %d/%d", succeeded, rejected)
	}

	current, err := svc.GetCurrent(ctx, itemID, ledger.KindStock)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if !current.Equal(dec("3")) {
		t.Errorf("expected final balance 3, got %s", current)
	}

	// Exactly one movement may have been recorded.
	movements, _ := svc.History(ctx, itemID, ledger.KindStock)
	if len(movements) != 1 {
		t.Errorf("expected 1 movement, got %d", len(movements))
	}
}

func TestAdjust_HighContentionAllSucceed(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	itemID := id.New()
	actorID := id.New()

	if err := svc.Open(ctx, itemID, ledger.KindStock, decimal.Zero, nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	// 16 concurrent in-bounds writers: each can lose a round only to a
	// peer that committed, so the retry budget absorbs all of them and
	// none may surface a conflict.
	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Adjust(ctx, itemID, ledger.KindStock, dec("1"), "po:x", actorID)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("writer %d: %v", i, err)
		}
	}

	current, err := svc.GetCurrent(ctx, itemID, ledger.KindStock)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if !current.Equal(dec("16")) {
		t.Errorf("expected final balance 16, got %s", current)
	}
	movements, _ := svc.History(ctx, itemID, ledger.KindStock)
	if len(movements) != writers {
		t.Errorf("expected %d movements, got %d", writers, len(movements))
	}
}

func TestAdjust_RejectionRecordsNothing(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	itemID := id.New()

	if err := svc.Open(ctx, itemID, ledger.KindStock, dec("2"), nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err := svc.Adjust(ctx, itemID, ledger.KindStock, dec("-5"), "ticket:x", id.New())
	if !apperror.IsCode(err, apperror.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}

	current, _ := svc.GetCurrent(ctx, itemID, ledger.KindStock)
	if !current.Equal(dec("2")) {
		t.Errorf("balance changed on rejection: %s", current)
	}
	movements, _ := svc.History(ctx, itemID, ledger.KindStock)
	if len(movements) != 0 {
		t.Errorf("movement recorded on rejection: %d", len(movements))
	}
}

func TestAdjust_InvoicePaidCap(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	invoiceID := id.New()
	actorID := id.New()

	max := dec("244.00")
	if err := svc.Open(ctx, invoiceID, ledger.KindInvoicePaid, decimal.Zero, &max); err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := svc.Adjust(ctx, invoiceID, ledger.KindInvoicePaid, dec("100.00"), "payment", actorID); err != nil {
		t.Fatalf("first payment: %v", err)
	}

	// 100 + 144 = 244, exactly the cap: allowed.
	b, err := svc.Adjust(ctx, invoiceID, ledger.KindInvoicePaid, dec("144.00"), "payment", actorID)
	if err != nil {
		t.Fatalf("closing payment: %v", err)
	}
	if !b.Current.Equal(max) {
		t.Errorf("expected paid %s, got %s", max, b.Current)
	}

	// Any further payment would exceed the invoice total.
	_, err = svc.Adjust(ctx, invoiceID, ledger.KindInvoicePaid, dec("0.01"), "payment", actorID)
	if !apperror.IsCode(err, apperror.CodeOverpayment) {
		t.Fatalf("expected OVERPAYMENT_NOT_ALLOWED, got %v", err)
	}
}

func TestAdjust_ConcurrentPaymentsNeverOverpay(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	invoiceID := id.New()
	actorID := id.New()

	max := dec("244.00")
	if err := svc.Open(ctx, invoiceID, ledger.KindInvoicePaid, dec("100.00"), &max); err != nil {
		t.Fatalf("open: %v", err)
	}

	// 144 + 10 on a remaining 144: at most one may land.
	amounts := []decimal.Decimal{dec("144.00"), dec("10.00")}
	var wg sync.WaitGroup
	errs := make([]error, len(amounts))
	for i, amount := range amounts {
		wg.Add(1)
		go func(i int, amount decimal.Decimal) {
			defer wg.Done()
			_, errs[i] = svc.Adjust(ctx, invoiceID, ledger.KindInvoicePaid, amount, "payment", actorID)
		}(i, amount)
	}
	wg.Wait()

	current, err := svc.GetCurrent(ctx, invoiceID, ledger.KindInvoicePaid)
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if current.GreaterThan(max) {
		t.Fatalf("invoice overpaid: %s > %s", current, max)
	}
	for _, err := range errs {
		if err != nil && !apperror.IsCode(err, apperror.CodeOverpayment) {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestAdjust_ZeroDeltaRejected(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	itemID := id.New()

	if err := svc.Open(ctx, itemID, ledger.KindStock, dec("1"), nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err := svc.Adjust(ctx, itemID, ledger.KindStock, decimal.Zero, "noop", id.New())
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestAdjust_UnknownBalance(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	_, err := svc.Adjust(ctx, id.New(), ledger.KindStock, dec("1"), "x", id.New())
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
