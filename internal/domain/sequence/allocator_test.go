package sequence_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"officina/internal/core/apperror"
	"officina/internal/domain/sequence"
	"officina/internal/infrastructure/storage/memory"
)

func TestAllocate_SequentialNoGaps(t *testing.T) {
	ctx := context.Background()
	alloc := sequence.NewAllocator(memory.NewSequenceStore())

	for want := int64(1); want <= 5; want++ {
		got, err := alloc.Allocate(ctx, sequence.SeriesInvoice, "2026")
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
}

func TestAllocate_PartitionsIndependent(t *testing.T) {
	ctx := context.Background()
	alloc := sequence.NewAllocator(memory.NewSequenceStore())

	a, err := alloc.Allocate(ctx, sequence.SeriesInvoice, "2025")
	if err != nil {
		t.Fatalf("allocate 2025: %v", err)
	}
	b, err := alloc.Allocate(ctx, sequence.SeriesInvoice, "2026")
	if err != nil {
		t.Fatalf("allocate 2026: %v", err)
	}
	if a != 1 || b != 1 {
		t.Errorf("partitions share state: got %d and %d", a, b)
	}

	// Different series with the same partition key are independent too.
	c, err := alloc.Allocate(ctx, sequence.SeriesRepair, "2026")
	if err != nil {
		t.Fatalf("allocate repair: %v", err)
	}
	if c != 1 {
		t.Errorf("series share state: got %d", c)
	}
}

func TestAllocate_ConcurrentDistinctAndGapless(t *testing.T) {
	ctx := context.Background()
	alloc := sequence.NewAllocator(memory.NewSequenceStore())

	if err := alloc.SetLastIssued(ctx, sequence.SeriesInvoice, "2026", 15); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]int64, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = alloc.Allocate(ctx, sequence.SeriesInvoice, "2026")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	if results[0] != 16 || results[1] != 17 {
		t.Errorf("expected {16, 17}, got %v", results)
	}
}

// stuckStore always loses the conditional commit.
type stuckStore struct{}

func (stuckStore) LastIssued(ctx context.Context, series sequence.Series, partition string) (int64, error) {
	return 0, nil
}

func (stuckStore) CommitNext(ctx context.Context, series sequence.Series, partition string, next int64) (bool, error) {
	return false, nil
}

func (stuckStore) SetLastIssued(ctx context.Context, series sequence.Series, partition string, value int64) error {
	return nil
}

func TestAllocate_ExhaustionSurfacesRetryable(t *testing.T) {
	ctx := context.Background()
	alloc := sequence.NewAllocator(stuckStore{})

	_, err := alloc.Allocate(ctx, sequence.SeriesOrder, sequence.GlobalPartition)
	if !apperror.IsCode(err, apperror.CodeSequenceExhausted) {
		t.Fatalf("expected SEQUENCE_EXHAUSTED, got %v", err)
	}
}

func TestAllocate_AfterZeroSeed(t *testing.T) {
	ctx := context.Background()
	alloc := sequence.NewAllocator(memory.NewSequenceStore())

	// Seeding a partition at zero pre-creates its row; the first
	// allocation must still commit and return 1.
	if err := alloc.SetLastIssued(ctx, sequence.SeriesInvoice, "2027", 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := alloc.Allocate(ctx, sequence.SeriesInvoice, "2027")
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestSetLastIssued_RejectsNegative(t *testing.T) {
	ctx := context.Background()
	alloc := sequence.NewAllocator(memory.NewSequenceStore())

	err := alloc.SetLastIssued(ctx, sequence.SeriesOrder, sequence.GlobalPartition, -1)
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestFormatting(t *testing.T) {
	day := sequence.DayPartition(time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC))
	if got := sequence.FormatRepairCode(day, 1); got != "RIP-20260211-0001" {
		t.Errorf("repair code: %s", got)
	}
	if got := sequence.FormatInvoiceNumber("2026", 16); got != "2026/0016" {
		t.Errorf("invoice number: %s", got)
	}
	if got := sequence.FormatOrderNumber(42); got != "ORD-000042" {
		t.Errorf("order number: %s", got)
	}
}
