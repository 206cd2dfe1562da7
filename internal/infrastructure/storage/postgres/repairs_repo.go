package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/repairs"
	"officina/internal/domain/workflow"
)

const (
	ticketsTable    = "repair_tickets"
	historyTable    = "ticket_status_history"
	partUsagesTable = "ticket_part_usages"
)

// RepairRepo implements repairs.Repository on PostgreSQL.
type RepairRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewRepairRepo creates a new repair ticket repository.
func NewRepairRepo(txm *TxManager) *RepairRepo {
	return &RepairRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ repairs.Repository = (*RepairRepo)(nil)

func (r *RepairRepo) Create(ctx context.Context, t *repairs.Ticket) error {
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)

		q := r.builder.Insert(ticketsTable).
			Columns(
				"id", "code", "customer_id", "assigned_technician_id", "status",
				"device_type", "device_brand", "device_model", "serial_number",
				"problem_description", "accessories", "priority",
				"version", "created_at",
			).
			Values(
				t.ID, t.Code, t.CustomerID, t.AssignedTechnicianID, t.Status,
				t.DeviceType, t.DeviceBrand, t.DeviceModel, t.SerialNumber,
				t.ProblemDescription, t.Accessories, t.Priority,
				t.Version, t.CreatedAt,
			)

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}

		for _, entry := range t.History {
			if err := r.insertHistory(ctx, t.ID, entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *RepairRepo) GetByID(ctx context.Context, ticketID id.ID) (*repairs.Ticket, error) {
	q := r.builder.Select(
		"id", "code", "customer_id", "assigned_technician_id", "status",
		"device_type", "device_brand", "device_model", "serial_number",
		"problem_description", "accessories", "priority",
		"version", "created_at",
	).From(ticketsTable).
		Where(squirrel.Eq{"id": ticketID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t repairs.Ticket
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ticket", ticketID.String())
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	hq := r.builder.Select("status", "actor_id", "note", "created_at").
		From(historyTable).
		Where(squirrel.Eq{"ticket_id": ticketID}).
		OrderBy("created_at")

	sql, args, err = hq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &t.History, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return &t, nil
}

func (r *RepairRepo) CommitStatus(ctx context.Context, t *repairs.Ticket, to workflow.Status, entry repairs.StatusEntry) (bool, error) {
	committed := false

	err := r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txm.GetQuerier(ctx)

		uq := r.builder.Update(ticketsTable).
			Set("status", to).
			Set("version", t.Version+1).
			Where(squirrel.Eq{"id": t.ID, "version": t.Version})

		sql, args, err := uq.ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}

		tag, err := querier.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		if err := r.insertHistory(ctx, t.ID, entry); err != nil {
			return err
		}
		committed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return committed, nil
}

func (r *RepairRepo) insertHistory(ctx context.Context, ticketID id.ID, entry repairs.StatusEntry) error {
	q := r.builder.Insert(historyTable).
		Columns("ticket_id", "status", "actor_id", "note", "created_at").
		Values(ticketID, entry.Status, entry.ActorID, entry.Note, entry.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (r *RepairRepo) SetTechnician(ctx context.Context, ticketID id.ID, technicianID id.ID) error {
	q := r.builder.Update(ticketsTable).
		Set("assigned_technician_id", technicianID).
		Where(squirrel.Eq{"id": ticketID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set technician: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ticket", ticketID.String())
	}
	return nil
}

func (r *RepairRepo) AddPartUsage(ctx context.Context, usage repairs.PartUsage) error {
	q := r.builder.Insert(partUsagesTable).
		Columns("id", "ticket_id", "item_id", "quantity", "unit_price", "actor_id", "created_at").
		Values(usage.ID, usage.TicketID, usage.ItemID, usage.Quantity, usage.UnitPrice, usage.ActorID, usage.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert part usage: %w", err)
	}
	return nil
}

func (r *RepairRepo) PartUsages(ctx context.Context, ticketID id.ID) ([]repairs.PartUsage, error) {
	q := r.builder.Select(
		"id", "ticket_id", "item_id", "quantity", "unit_price", "actor_id", "created_at",
	).From(partUsagesTable).
		Where(squirrel.Eq{"ticket_id": ticketID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var usages []repairs.PartUsage
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &usages, sql, args...); err != nil {
		return nil, fmt.Errorf("select part usages: %w", err)
	}
	return usages, nil
}
