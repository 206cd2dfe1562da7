package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/catalog"
)

const itemsTable = "items"

// CatalogRepo implements catalog.Catalog on PostgreSQL.
type CatalogRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewCatalogRepo creates a new catalog repository.
func NewCatalogRepo(txm *TxManager) *CatalogRepo {
	return &CatalogRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ catalog.Catalog = (*CatalogRepo)(nil)

func (r *CatalogRepo) GetItem(ctx context.Context, itemID id.ID) (catalog.Item, error) {
	q := r.builder.Select("id", "code", "name", "price").
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return catalog.Item{}, fmt.Errorf("build query: %w", err)
	}

	var item catalog.Item
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return catalog.Item{}, apperror.NewNotFound("item", itemID.String())
		}
		return catalog.Item{}, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}
