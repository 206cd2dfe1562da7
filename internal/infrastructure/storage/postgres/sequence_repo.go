package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"officina/internal/domain/sequence"
)

const sequencesTable = "sequences"

// SequenceRepo implements sequence.Store on PostgreSQL.
// Raw SQL here: the hot path is two short statements and the upsert needs
// ON CONFLICT, which reads clearer without a builder.
type SequenceRepo struct {
	txm *TxManager
}

// NewSequenceRepo creates a new sequence store.
func NewSequenceRepo(txm *TxManager) *SequenceRepo {
	return &SequenceRepo{txm: txm}
}

var _ sequence.Store = (*SequenceRepo)(nil)

func (r *SequenceRepo) LastIssued(ctx context.Context, series sequence.Series, partition string) (int64, error) {
	sql := `SELECT last_issued FROM sequences WHERE series = $1 AND partition = $2`

	var last int64
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, series, partition).Scan(&last)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get last issued: %w", err)
	}
	return last, nil
}

func (r *SequenceRepo) CommitNext(ctx context.Context, series sequence.Series, partition string, next int64) (bool, error) {
	querier := r.txm.GetQuerier(ctx)

	if next == 1 {
		// First allocation creates the entry; a concurrent creator wins the
		// conflict and this caller retries.
		sql := `
			INSERT INTO sequences (series, partition, last_issued)
			VALUES ($1, $2, 1)
			ON CONFLICT (series, partition) DO NOTHING
		`
		tag, err := querier.Exec(ctx, sql, series, partition)
		if err != nil {
			return false, fmt.Errorf("insert sequence: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return true, nil
		}
		// The row already exists. A partition seeded at last_issued = 0
		// still commits through the conditional update below.
	}

	sql := `
		UPDATE sequences SET last_issued = $3
		WHERE series = $1 AND partition = $2 AND last_issued = $4
	`
	tag, err := querier.Exec(ctx, sql, series, partition, next, next-1)
	if err != nil {
		return false, fmt.Errorf("update sequence: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *SequenceRepo) SetLastIssued(ctx context.Context, series sequence.Series, partition string, value int64) error {
	sql := `
		INSERT INTO sequences (series, partition, last_issued)
		VALUES ($1, $2, $3)
		ON CONFLICT (series, partition) DO UPDATE SET last_issued = EXCLUDED.last_issued
	`
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, series, partition, value); err != nil {
		return fmt.Errorf("set last issued: %w", err)
	}
	return nil
}
