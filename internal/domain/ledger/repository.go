package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"officina/internal/core/id"
)

// Repository defines the persistence primitives for balances: read-current
// plus conditional commit. The atomicity contract lives here, not in a
// specific storage engine.
type Repository interface {
	// Get returns the balance for (subjectID, kind).
	// Returns apperror NOT_FOUND when the balance was never opened.
	Get(ctx context.Context, subjectID id.ID, kind Kind) (Balance, error)

	// Create opens a new balance row. Fails if one already exists.
	Create(ctx context.Context, b Balance) error

	// Commit writes next as the new current and appends mv, if and only if
	// the stored version still equals b.Version. Returns false (and no
	// error) when another writer committed first; the caller re-reads and
	// re-validates. Balance update and movement append are atomic.
	Commit(ctx context.Context, b Balance, next decimal.Decimal, mv Movement) (bool, error)

	// Movements returns the movement log for a balance, oldest first.
	Movements(ctx context.Context, subjectID id.ID, kind Kind) ([]Movement, error)
}
