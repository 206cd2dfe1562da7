package memory

import (
	"context"
	"sync"

	"officina/internal/domain/sequence"
)

type sequenceKey struct {
	series    sequence.Series
	partition string
}

// SequenceStore is an in-memory sequence.Store.
type SequenceStore struct {
	mu   sync.Mutex
	last map[sequenceKey]int64
}

// NewSequenceStore creates an empty sequence store.
func NewSequenceStore() *SequenceStore {
	return &SequenceStore{last: make(map[sequenceKey]int64)}
}

var _ sequence.Store = (*SequenceStore)(nil)

func (s *SequenceStore) LastIssued(ctx context.Context, series sequence.Series, partition string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.last[sequenceKey{series, partition}], nil
}

func (s *SequenceStore) CommitNext(ctx context.Context, series sequence.Series, partition string, next int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sequenceKey{series, partition}
	if s.last[key] != next-1 {
		return false, nil
	}
	s.last[key] = next
	return true, nil
}

func (s *SequenceStore) SetLastIssued(ctx context.Context, series sequence.Series, partition string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last[sequenceKey{series, partition}] = value
	return nil
}
