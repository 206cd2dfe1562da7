package sequence

import "context"

// Store defines the persistence primitives for sequences. One entry per
// (series, partition); never a single process-wide counter, so unrelated
// years and days do not contend.
type Store interface {
	// LastIssued returns the high-water mark for (series, partition),
	// or 0 when the partition has never issued a number.
	LastIssued(ctx context.Context, series Series, partition string) (int64, error)

	// CommitNext records next as the new lastIssued, if and only if the
	// stored value is still next-1 (creating the entry on first
	// allocation). Returns false when a concurrent caller won the slot.
	CommitNext(ctx context.Context, series Series, partition string, next int64) (bool, error)

	// SetLastIssued overwrites the high-water mark. Migration/ops hook for
	// partitions seeded from an external numbering scheme.
	SetLastIssued(ctx context.Context, series Series, partition string, value int64) error
}
