package memory

import (
	"context"
	"sync"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/catalog"
)

// CatalogStore is an in-memory catalog.Catalog with a writable item set.
type CatalogStore struct {
	mu    sync.Mutex
	items map[id.ID]catalog.Item
}

// NewCatalogStore creates an empty catalog.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{items: make(map[id.ID]catalog.Item)}
}

var _ catalog.Catalog = (*CatalogStore)(nil)

// Put adds or replaces an item.
func (s *CatalogStore) Put(item catalog.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[item.ID] = item
}

func (s *CatalogStore) GetItem(ctx context.Context, itemID id.ID) (catalog.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return catalog.Item{}, apperror.NewNotFound("item", itemID.String())
	}
	return item, nil
}
