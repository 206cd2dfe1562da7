package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/pkg/logger"
)

// adjustAttempts bounds the conditional-commit retry loop. Every lost round
// means another writer committed, so a writer can lose at most once per
// concurrent peer; the bound is sized well past any realistic writer count
// on a single subject. Exhaustion still surfaces as a retryable conflict,
// never a partially applied movement.
const adjustAttempts = 32

// Service provides the adjustment protocol for balances.
type Service struct {
	repo Repository
}

// NewService creates a new ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Open creates the balance for a new subject. Seed is the starting quantity
// (zero unless migrating existing stock); max is the optional upper bound.
func (s *Service) Open(ctx context.Context, subjectID id.ID, kind Kind, seed decimal.Decimal, max *decimal.Decimal) error {
	if !kind.Valid() {
		return apperror.NewValidation("unknown balance kind").WithDetail("kind", string(kind))
	}
	if seed.IsNegative() {
		return apperror.NewValidation("seed must not be negative")
	}

	b := Balance{
		SubjectID: subjectID,
		Kind:      kind,
		Current:   seed,
		Max:       max,
		Version:   1,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return fmt.Errorf("open balance: %w", err)
	}
	return nil
}

// Adjust applies one signed movement to the balance for (subjectID, kind).
//
// The read-check-write sequence runs as a critical section per subject:
// the repository commit is conditional on the version observed at read time,
// and a lost race triggers a fresh read-check-write cycle. The call either
// fully succeeds or fully fails; a bound violation records no movement and
// changes no balance. Should the retry budget ever run out, the caller gets
// CONCURRENT_MODIFICATION and may simply retry the whole call.
func (s *Service) Adjust(ctx context.Context, subjectID id.ID, kind Kind, delta decimal.Decimal, reason string, actorID id.ID) (Balance, error) {
	if !kind.Valid() {
		return Balance{}, apperror.NewValidation("unknown balance kind").WithDetail("kind", string(kind))
	}
	if delta.IsZero() {
		return Balance{}, apperror.NewValidation("delta must be non-zero").
			WithDetail("field", "delta").
			WithDetail("rule", "non_zero")
	}

	for attempt := 0; attempt < adjustAttempts; attempt++ {
		b, err := s.repo.Get(ctx, subjectID, kind)
		if err != nil {
			return Balance{}, err
		}

		proposed := b.Current.Add(delta)
		if err := b.checkBounds(delta, proposed); err != nil {
			return Balance{}, err
		}

		mv := Movement{
			ID:        id.New(),
			SubjectID: subjectID,
			Kind:      kind,
			Delta:     delta,
			Reason:    reason,
			ActorID:   actorID,
			CreatedAt: time.Now().UTC(),
		}

		committed, err := s.repo.Commit(ctx, b, proposed, mv)
		if err != nil {
			return Balance{}, fmt.Errorf("commit movement: %w", err)
		}
		if !committed {
			// Another writer won; re-read and re-validate against its effect.
			continue
		}

		b.Current = proposed
		b.Version++

		logger.Info(ctx, "balance adjusted",
			"subject_id", subjectID,
			"kind", kind,
			"delta", delta.String(),
			"current", proposed.String(),
			"reason", reason,
		)
		return b, nil
	}

	return Balance{}, apperror.NewConcurrentModification("balance", subjectID.String())
}

// GetCurrent returns the latest committed balance value.
func (s *Service) GetCurrent(ctx context.Context, subjectID id.ID, kind Kind) (decimal.Decimal, error) {
	b, err := s.repo.Get(ctx, subjectID, kind)
	if err != nil {
		return decimal.Zero, err
	}
	return b.Current, nil
}

// History returns the movement log for a balance, oldest first.
func (s *Service) History(ctx context.Context, subjectID id.ID, kind Kind) ([]Movement, error) {
	return s.repo.Movements(ctx, subjectID, kind)
}
