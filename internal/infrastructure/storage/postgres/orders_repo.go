package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/orders"
)

const (
	ordersTable     = "purchase_orders"
	orderLinesTable = "purchase_order_lines"
)

// OrderRepo implements orders.Repository on PostgreSQL.
type OrderRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewOrderRepo creates a new purchase order repository.
func NewOrderRepo(txm *TxManager) *OrderRepo {
	return &OrderRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ orders.Repository = (*OrderRepo)(nil)

func (r *OrderRepo) Create(ctx context.Context, o *orders.PurchaseOrder) error {
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)

		q := r.builder.Insert(ordersTable).
			Columns("id", "number", "supplier_id", "status", "version", "created_at").
			Values(o.ID, o.Number, o.SupplierID, o.Status, o.Version, o.CreatedAt)

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		lq := r.builder.Insert(orderLinesTable).
			Columns("order_id", "line_no", "item_id", "quantity_ordered", "quantity_received")
		for i, l := range o.Lines {
			lq = lq.Values(o.ID, i+1, l.ItemID, l.QuantityOrdered, l.QuantityReceived)
		}

		sql, args, err = lq.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert order lines: %w", err)
		}
		return nil
	})
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.PurchaseOrder, error) {
	q := r.builder.Select(
		"id", "number", "supplier_id", "status", "version", "created_at",
	).From(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o orders.PurchaseOrder
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	lq := r.builder.Select("item_id", "quantity_ordered", "quantity_received").
		From(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err = lq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &o.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}

	return &o, nil
}

func (r *OrderRepo) Commit(ctx context.Context, o *orders.PurchaseOrder) (bool, error) {
	committed := false

	err := r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)

		uq := r.builder.Update(ordersTable).
			Set("status", o.Status).
			Set("version", o.Version+1).
			Where(squirrel.Eq{"id": o.ID, "version": o.Version})

		sql, args, err := uq.ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}

		tag, err := querier.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		for _, l := range o.Lines {
			lq := r.builder.Update(orderLinesTable).
				Set("quantity_received", l.QuantityReceived).
				Where(squirrel.Eq{"order_id": o.ID, "item_id": l.ItemID})

			sql, args, err := lq.ToSql()
			if err != nil {
				return fmt.Errorf("build update: %w", err)
			}
			if _, err := querier.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("update order line: %w", err)
			}
		}

		committed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return committed, nil
}
