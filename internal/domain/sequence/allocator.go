package sequence

import (
	"context"
	"fmt"

	"officina/internal/core/apperror"
	"officina/pkg/logger"
)

// allocateAttempts bounds the internal collision retry. This is an
// implementation escape hatch, not a caller-visible contention error:
// under N concurrent callers each still receives a distinct, gapless number.
const allocateAttempts = 3

// Allocator issues the next number in a (series, partition) with no repeats
// and no gaps relative to the prior high-water mark.
type Allocator struct {
	store Store
}

// NewAllocator creates a new sequence allocator.
func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store}
}

// Allocate returns lastIssued+1 for (series, partition) and commits it as the
// new high-water mark, atomically with respect to concurrent callers. When
// the conditional commit keeps losing races, SEQUENCE_EXHAUSTED is returned
// and the caller should retry the whole operation later.
func (a *Allocator) Allocate(ctx context.Context, series Series, partition string) (int64, error) {
	for attempt := 0; attempt < allocateAttempts; attempt++ {
		last, err := a.store.LastIssued(ctx, series, partition)
		if err != nil {
			return 0, fmt.Errorf("read last issued: %w", err)
		}

		next := last + 1
		committed, err := a.store.CommitNext(ctx, series, partition, next)
		if err != nil {
			return 0, fmt.Errorf("commit next: %w", err)
		}
		if committed {
			return next, nil
		}
	}

	logger.Warn(ctx, "sequence allocation retries exhausted",
		"series", series,
		"partition", partition,
	)
	return 0, apperror.NewSequenceExhausted(string(series), partition)
}

// SetLastIssued overwrites the high-water mark for a partition. Used when
// bootstrapping from an externally seeded numbering scheme, and by tests.
func (a *Allocator) SetLastIssued(ctx context.Context, series Series, partition string, value int64) error {
	if value < 0 {
		return apperror.NewValidation("last issued must not be negative")
	}
	return a.store.SetLastIssued(ctx, series, partition, value)
}
