package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/ledger"
)

const (
	balancesTable  = "balances"
	movementsTable = "balance_movements"
)

// LedgerRepo implements ledger.Repository on PostgreSQL.
// The conditional commit is a single UPDATE guarded by the version column.
type LedgerRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txm *TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.Repository = (*LedgerRepo)(nil)

func (r *LedgerRepo) Get(ctx context.Context, subjectID id.ID, kind ledger.Kind) (ledger.Balance, error) {
	q := r.builder.Select(
		"subject_id", "kind", "current", "max", "version", "created_at",
	).From(balancesTable).
		Where(squirrel.Eq{"subject_id": subjectID, "kind": kind}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return ledger.Balance{}, fmt.Errorf("build query: %w", err)
	}

	var b ledger.Balance
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ledger.Balance{}, apperror.NewNotFound("balance", subjectID.String())
		}
		return ledger.Balance{}, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

func (r *LedgerRepo) Create(ctx context.Context, b ledger.Balance) error {
	q := r.builder.Insert(balancesTable).
		Columns("subject_id", "kind", "current", "max", "version", "created_at").
		Values(b.SubjectID, b.Kind, b.Current, b.Max, b.Version, b.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert balance: %w", err)
	}
	return nil
}

func (r *LedgerRepo) Commit(ctx context.Context, b ledger.Balance, next decimal.Decimal, mv ledger.Movement) (bool, error) {
	committed := false

	err := r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)

		uq := r.builder.Update(balancesTable).
			Set("current", next).
			Set("version", b.Version+1).
			Where(squirrel.Eq{
				"subject_id": b.SubjectID,
				"kind":       b.Kind,
				"version":    b.Version,
			})

		sql, args, err := uq.ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}

		tag, err := querier.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Lost the version race; the caller re-reads.
			return nil
		}

		iq := r.builder.Insert(movementsTable).
			Columns("id", "subject_id", "kind", "delta", "reason", "actor_id", "created_at").
			Values(mv.ID, mv.SubjectID, mv.Kind, mv.Delta, mv.Reason, mv.ActorID, mv.CreatedAt)

		sql, args, err = iq.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}

		committed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return committed, nil
}

func (r *LedgerRepo) Movements(ctx context.Context, subjectID id.ID, kind ledger.Kind) ([]ledger.Movement, error) {
	q := r.builder.Select(
		"id", "subject_id", "kind", "delta", "reason", "actor_id", "created_at",
	).From(movementsTable).
		Where(squirrel.Eq{"subject_id": subjectID, "kind": kind}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}
