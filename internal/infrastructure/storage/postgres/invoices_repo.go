package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/invoices"
)

const invoicesTable = "invoices"

// InvoiceRepo implements invoices.Repository on PostgreSQL.
type InvoiceRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ invoices.Repository = (*InvoiceRepo)(nil)

func (r *InvoiceRepo) Create(ctx context.Context, inv *invoices.Invoice) error {
	q := r.builder.Insert(invoicesTable).
		Columns("id", "number", "customer_id", "ticket_id", "total", "issued_at").
		Values(inv.ID, inv.Number, inv.CustomerID, inv.TicketID, inv.Total, inv.IssuedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoices.Invoice, error) {
	q := r.builder.Select(
		"id", "number", "customer_id", "ticket_id", "total", "issued_at",
	).From(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv invoices.Invoice
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

func (r *InvoiceRepo) ListByCustomer(ctx context.Context, customerID id.ID) ([]invoices.Invoice, error) {
	q := r.builder.Select(
		"id", "number", "customer_id", "ticket_id", "total", "issued_at",
	).From(invoicesTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("issued_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []invoices.Invoice
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select invoices: %w", err)
	}
	return out, nil
}
