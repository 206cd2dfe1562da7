// Package catalog provides the price/catalog collaborator contract.
// Item master data lives outside this core; stock operations only need a
// point lookup for price snapshotting.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"officina/internal/core/id"
)

// Item is the catalog view of an inventory item.
type Item struct {
	ID    id.ID           `json:"id"`
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Catalog resolves items by id.
type Catalog interface {
	// GetItem returns the item, or apperror NOT_FOUND.
	GetItem(ctx context.Context, itemID id.ID) (Item, error)
}
