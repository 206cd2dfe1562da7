// Package memory provides mutex-guarded in-process stores. They back local
// development and tests when no DATABASE_URL is configured, and honor the
// same conditional-commit contracts as the postgres stores.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/ledger"
)

type balanceKey struct {
	subjectID id.ID
	kind      ledger.Kind
}

// LedgerStore is an in-memory ledger.Repository.
type LedgerStore struct {
	mu        sync.Mutex
	balances  map[balanceKey]ledger.Balance
	movements map[balanceKey][]ledger.Movement
}

// NewLedgerStore creates an empty ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		balances:  make(map[balanceKey]ledger.Balance),
		movements: make(map[balanceKey][]ledger.Movement),
	}
}

var _ ledger.Repository = (*LedgerStore)(nil)

func (s *LedgerStore) Get(ctx context.Context, subjectID id.ID, kind ledger.Kind) (ledger.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.balances[balanceKey{subjectID, kind}]
	if !ok {
		return ledger.Balance{}, apperror.NewNotFound("balance", subjectID.String())
	}
	return b, nil
}

func (s *LedgerStore) Create(ctx context.Context, b ledger.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := balanceKey{b.SubjectID, b.Kind}
	if _, ok := s.balances[key]; ok {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "balance already exists").
			WithDetail("subject_id", b.SubjectID.String()).
			WithDetail("kind", string(b.Kind))
	}
	s.balances[key] = b
	return nil
}

func (s *LedgerStore) Commit(ctx context.Context, b ledger.Balance, next decimal.Decimal, mv ledger.Movement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := balanceKey{b.SubjectID, b.Kind}
	stored, ok := s.balances[key]
	if !ok {
		return false, apperror.NewNotFound("balance", b.SubjectID.String())
	}
	if stored.Version != b.Version {
		return false, nil
	}

	stored.Current = next
	stored.Version++
	s.balances[key] = stored
	s.movements[key] = append(s.movements[key], mv)
	return true, nil
}

func (s *LedgerStore) Movements(ctx context.Context, subjectID id.ID, kind ledger.Kind) ([]ledger.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := balanceKey{subjectID, kind}
	out := make([]ledger.Movement, len(s.movements[key]))
	copy(out, s.movements[key])
	return out, nil
}
