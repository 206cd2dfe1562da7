package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/quotes"
)

const quotesTable = "quotes"

// QuoteRepo implements quotes.Repository on PostgreSQL.
type QuoteRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewQuoteRepo creates a new quote repository.
func NewQuoteRepo(txm *TxManager) *QuoteRepo {
	return &QuoteRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ quotes.Repository = (*QuoteRepo)(nil)

func (r *QuoteRepo) Create(ctx context.Context, q *quotes.Quote) error {
	ins := r.builder.Insert(quotesTable).
		Columns("id", "ticket_id", "amount", "description", "status", "created_at", "decided_at").
		Values(q.ID, q.TicketID, q.Amount, q.Description, q.Status, q.CreatedAt, q.DecidedAt)

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (r *QuoteRepo) GetByID(ctx context.Context, quoteID id.ID) (*quotes.Quote, error) {
	sel := r.builder.Select(
		"id", "ticket_id", "amount", "description", "status", "created_at", "decided_at",
	).From(quotesTable).
		Where(squirrel.Eq{"id": quoteID}).
		Limit(1)

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var q quotes.Quote
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &q, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quote", quoteID.String())
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}
	return &q, nil
}

func (r *QuoteRepo) ListByTicket(ctx context.Context, ticketID id.ID) ([]quotes.Quote, error) {
	sel := r.builder.Select(
		"id", "ticket_id", "amount", "description", "status", "created_at", "decided_at",
	).From(quotesTable).
		Where(squirrel.Eq{"ticket_id": ticketID}).
		OrderBy("created_at ASC")

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []quotes.Quote
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select quotes: %w", err)
	}
	return out, nil
}

func (r *QuoteRepo) SetDecision(ctx context.Context, quoteID id.ID, status quotes.Status, decidedAt time.Time) error {
	upd := r.builder.Update(quotesTable).
		Set("status", status).
		Set("decided_at", decidedAt).
		Where(squirrel.Eq{"id": quoteID})

	sql, args, err := upd.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("quote", quoteID.String())
	}
	return nil
}
