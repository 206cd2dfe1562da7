package repairs_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"officina/internal/core/actor"
	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/core/tx"
	"officina/internal/domain/catalog"
	"officina/internal/domain/ledger"
	"officina/internal/domain/notify"
	"officina/internal/domain/repairs"
	"officina/internal/domain/sequence"
	"officina/internal/domain/workflow"
	"officina/internal/infrastructure/storage/memory"
)

type fixture struct {
	service  *repairs.Service
	ledger   *ledger.Service
	catalog  *memory.CatalogStore
	notifier *notify.MockNotifier
}

func newFixture() *fixture {
	ledgerSvc := ledger.NewService(memory.NewLedgerStore())
	allocator := sequence.NewAllocator(memory.NewSequenceStore())
	cat := memory.NewCatalogStore()
	notifier := &notify.MockNotifier{}

	return &fixture{
		service:  repairs.NewService(memory.NewRepairStore(), ledgerSvc, allocator, cat, notifier, tx.Noop{}),
		ledger:   ledgerSvc,
		catalog:  cat,
		notifier: notifier,
	}
}

func newTicket() *repairs.Ticket {
	return &repairs.Ticket{
		CustomerID:         id.New(),
		DeviceType:         "SMARTPHONE",
		DeviceBrand:        "Samsung",
		DeviceModel:        "Galaxy S21",
		SerialNumber:       "SN-0042",
		ProblemDescription: "screen does not turn on",
		Priority:           repairs.PriorityNormal,
	}
}

func admin() actor.Actor {
	return actor.Actor{ID: id.New(), Role: actor.RoleAdmin}
}

func TestCreate_IntakeDefaults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))

	day := time.Now().UTC().Format("20060102")
	require.Equal(t, fmt.Sprintf("RIP-%s-0001", day), ticket.Code)
	require.Equal(t, workflow.StatusReceived, ticket.Status)
	require.Len(t, ticket.History, 1)
	require.Equal(t, workflow.StatusReceived, ticket.History[0].Status)
	require.Equal(t, a.ID, ticket.History[0].ActorID)

	// Same-day intakes number sequentially.
	second := newTicket()
	require.NoError(t, f.service.Create(ctx, second, a.ID))
	require.Equal(t, fmt.Sprintf("RIP-%s-0002", day), second.Code)
}

func TestCreate_ValidationDetails(t *testing.T) {
	f := newFixture()
	ticket := newTicket()
	ticket.SerialNumber = ""

	err := f.service.Create(context.Background(), ticket, id.New())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeValidation, appErr.Code)
	require.Equal(t, "serialNumber", appErr.Details["field"])
	require.Equal(t, "required", appErr.Details["rule"])
}

func TestTransition_AppendsHistoryAndNotifies(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))

	result, err := f.service.Transition(ctx, ticket.ID, a, workflow.StatusDiagnosing, "bench 2")
	require.NoError(t, err)

	require.Equal(t, workflow.StatusDiagnosing, result.Ticket.Status)
	require.Len(t, result.Ticket.History, 2)
	last := result.Ticket.History[len(result.Ticket.History)-1]
	require.Equal(t, workflow.StatusDiagnosing, last.Status)
	require.Equal(t, "bench 2", last.Note)

	require.Equal(t, notify.DeliverySent, result.Notification.Status)
	require.Len(t, f.notifier.Sent, 1)
	require.Equal(t, ticket.Code, f.notifier.Sent[0].TicketCode)
	require.Equal(t, "DIAGNOSING", f.notifier.Sent[0].Status)
}

func TestTransition_NotificationFailureDoesNotRollBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))

	f.notifier.SendFunc = func(ctx context.Context, kind notify.Kind, payload notify.StatusChangePayload) (bool, error) {
		return false, errors.New("smtp unreachable")
	}

	result, err := f.service.Transition(ctx, ticket.ID, a, workflow.StatusDiagnosing, "")
	require.NoError(t, err)
	require.Equal(t, notify.DeliveryFailed, result.Notification.Status)

	// The transition stands.
	stored, err := f.service.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusDiagnosing, stored.Status)
}

func TestTransition_IllegalEdgeLeavesHistoryUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))

	_, err := f.service.Transition(ctx, ticket.ID, a, workflow.StatusCompleted, "")
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))

	stored, err := f.service.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusReceived, stored.Status)
	require.Len(t, stored.History, 1)
	require.Empty(t, f.notifier.Sent)
}

func TestTransition_UnassignedTechnicianForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))

	tech := actor.Actor{ID: id.New(), Role: actor.RoleTechnician}
	_, err := f.service.Transition(ctx, ticket.ID, tech, workflow.StatusDiagnosing, "")
	require.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestTransition_AssignedTechnicianAllowed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()
	tech := actor.Actor{ID: id.New(), Role: actor.RoleTechnician}

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))
	require.NoError(t, f.service.AssignTechnician(ctx, ticket.ID, tech.ID, a))

	result, err := f.service.Transition(ctx, ticket.ID, tech, workflow.StatusDiagnosing, "")
	require.NoError(t, err)
	require.Equal(t, workflow.StatusDiagnosing, result.Ticket.Status)
}

func TestAssignTechnician_AdminOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))

	commercial := actor.Actor{ID: id.New(), Role: actor.RoleCommercial}
	err := f.service.AssignTechnician(ctx, ticket.ID, id.New(), commercial)
	require.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestLinkPart_ConsumesStockAtSnapshotPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))

	item := catalog.Item{ID: id.New(), Code: "SCR-S21", Name: "Galaxy S21 screen", Price: decimal.RequireFromString("89.90")}
	f.catalog.Put(item)
	require.NoError(t, f.ledger.Open(ctx, item.ID, ledger.KindStock, decimal.NewFromInt(10), nil))

	usage, err := f.service.LinkPart(ctx, ticket.ID, item.ID, decimal.NewFromInt(3), a)
	require.NoError(t, err)
	require.True(t, usage.UnitPrice.Equal(item.Price))
	require.True(t, usage.Quantity.Equal(decimal.NewFromInt(3)))

	current, err := f.ledger.GetCurrent(ctx, item.ID, ledger.KindStock)
	require.NoError(t, err)
	require.True(t, current.Equal(decimal.NewFromInt(7)))

	usages, err := f.service.PartUsages(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, usages, 1)

	// The movement references the consuming ticket.
	movements, err := f.ledger.History(ctx, item.ID, ledger.KindStock)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, fmt.Sprintf("ticket:%s", ticket.ID), movements[0].Reason)
}

func TestLinkPart_InsufficientStockRecordsNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))

	item := catalog.Item{ID: id.New(), Code: "BAT-S21", Name: "battery", Price: decimal.RequireFromString("25.00")}
	f.catalog.Put(item)
	require.NoError(t, f.ledger.Open(ctx, item.ID, ledger.KindStock, decimal.NewFromInt(2), nil))

	_, err := f.service.LinkPart(ctx, ticket.ID, item.ID, decimal.NewFromInt(5), a)
	require.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	usages, err := f.service.PartUsages(ctx, ticket.ID)
	require.NoError(t, err)
	require.Empty(t, usages)

	current, err := f.ledger.GetCurrent(ctx, item.ID, ledger.KindStock)
	require.NoError(t, err)
	require.True(t, current.Equal(decimal.NewFromInt(2)))
}

func TestLinkPart_ClosedTicketRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))
	_, err := f.service.Transition(ctx, ticket.ID, a, workflow.StatusCancelled, "customer gave up")
	require.NoError(t, err)

	item := catalog.Item{ID: id.New(), Code: "X", Name: "x", Price: decimal.NewFromInt(1)}
	f.catalog.Put(item)
	require.NoError(t, f.ledger.Open(ctx, item.ID, ledger.KindStock, decimal.NewFromInt(1), nil))

	_, err = f.service.LinkPart(ctx, ticket.ID, item.ID, decimal.NewFromInt(1), a)
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestLinkPart_QuantityMustBePositiveInteger(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	ticket := newTicket()
	require.NoError(t, f.service.Create(ctx, ticket, a.ID))

	for _, qty := range []string{"0", "-1", "1.5"} {
		_, err := f.service.LinkPart(ctx, ticket.ID, id.New(), decimal.RequireFromString(qty), a)
		require.True(t, apperror.IsCode(err, apperror.CodeValidation), "qty %s", qty)
	}
}
