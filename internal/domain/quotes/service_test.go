package quotes_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"officina/internal/core/actor"
	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/core/tx"
	"officina/internal/domain/ledger"
	"officina/internal/domain/notify"
	"officina/internal/domain/quotes"
	"officina/internal/domain/repairs"
	"officina/internal/domain/sequence"
	"officina/internal/domain/workflow"
	"officina/internal/infrastructure/storage/memory"
)

type fixture struct {
	service *quotes.Service
	repairs *repairs.Service
}

func newFixture() *fixture {
	ledgerSvc := ledger.NewService(memory.NewLedgerStore())
	allocator := sequence.NewAllocator(memory.NewSequenceStore())
	repairSvc := repairs.NewService(
		memory.NewRepairStore(), ledgerSvc, allocator,
		memory.NewCatalogStore(), &notify.MockNotifier{}, tx.Noop{},
	)

	return &fixture{
		service: quotes.NewService(memory.NewQuoteStore(), repairSvc, tx.Noop{}),
		repairs: repairSvc,
	}
}

func admin() actor.Actor {
	return actor.Actor{ID: id.New(), Role: actor.RoleAdmin}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newDiagnosingTicket creates a ticket and walks it to DIAGNOSING, the
// state quotes are issued from.
func (f *fixture) newDiagnosingTicket(t *testing.T, a actor.Actor) *repairs.Ticket {
	t.Helper()
	ctx := context.Background()

	ticket := &repairs.Ticket{
		CustomerID:         id.New(),
		DeviceType:         "LAPTOP",
		DeviceBrand:        "Lenovo",
		DeviceModel:        "T14",
		SerialNumber:       "SN-0099",
		ProblemDescription: "does not boot",
		Priority:           repairs.PriorityNormal,
	}
	require.NoError(t, f.repairs.Create(ctx, ticket, a.ID))

	_, err := f.repairs.Transition(ctx, ticket.ID, a, workflow.StatusDiagnosing, "")
	require.NoError(t, err)
	return ticket
}

func TestIssue_MovesTicketToQuoteIssued(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()
	ticket := f.newDiagnosingTicket(t, a)

	q, err := f.service.Issue(ctx, &quotes.Quote{
		TicketID:    ticket.ID,
		Amount:      money("120.00"),
		Description: "mainboard replacement",
	}, a)
	require.NoError(t, err)
	require.Equal(t, quotes.StatusIssued, q.Status)
	require.Nil(t, q.DecidedAt)

	stored, err := f.repairs.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusQuoteIssued, stored.Status)

	list, err := f.service.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestIssue_AmountMustBePositive(t *testing.T) {
	f := newFixture()
	a := admin()
	ticket := f.newDiagnosingTicket(t, a)

	_, err := f.service.Issue(context.Background(), &quotes.Quote{
		TicketID: ticket.ID,
		Amount:   decimal.Zero,
	}, a)
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestIssue_IllegalTicketStateStoresNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	// Ticket still in RECEIVED: no edge to QUOTE_ISSUED.
	ticket := &repairs.Ticket{
		CustomerID:         id.New(),
		DeviceType:         "LAPTOP",
		DeviceBrand:        "Lenovo",
		DeviceModel:        "T14",
		SerialNumber:       "SN-0100",
		ProblemDescription: "does not boot",
		Priority:           repairs.PriorityNormal,
	}
	require.NoError(t, f.repairs.Create(ctx, ticket, a.ID))

	_, err := f.service.Issue(ctx, &quotes.Quote{TicketID: ticket.ID, Amount: money("50.00")}, a)
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))

	list, err := f.service.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestIssue_CommercialForbidden(t *testing.T) {
	f := newFixture()
	a := admin()
	ticket := f.newDiagnosingTicket(t, a)

	commercial := actor.Actor{ID: id.New(), Role: actor.RoleCommercial}
	_, err := f.service.Issue(context.Background(), &quotes.Quote{
		TicketID: ticket.ID,
		Amount:   money("50.00"),
	}, commercial)
	require.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

// issueAndSubmit issues a quote and moves the ticket to AWAITING_APPROVAL.
func (f *fixture) issueAndSubmit(t *testing.T, a actor.Actor) *quotes.Quote {
	t.Helper()
	ctx := context.Background()
	ticket := f.newDiagnosingTicket(t, a)

	q, err := f.service.Issue(ctx, &quotes.Quote{TicketID: ticket.ID, Amount: money("120.00")}, a)
	require.NoError(t, err)

	_, err = f.repairs.Transition(ctx, ticket.ID, a, workflow.StatusAwaitingApproval, "")
	require.NoError(t, err)
	return q
}

func TestAccept_ApprovesTicket(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()
	q := f.issueAndSubmit(t, a)

	decided, err := f.service.Accept(ctx, q.ID, a)
	require.NoError(t, err)
	require.Equal(t, quotes.StatusAccepted, decided.Status)
	require.NotNil(t, decided.DecidedAt)

	ticket, err := f.repairs.GetByID(ctx, q.TicketID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusApproved, ticket.Status)
}

func TestDecline_CancelsTicket(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()
	q := f.issueAndSubmit(t, a)

	decided, err := f.service.Decline(ctx, q.ID, a)
	require.NoError(t, err)
	require.Equal(t, quotes.StatusDeclined, decided.Status)

	ticket, err := f.repairs.GetByID(ctx, q.TicketID)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusCancelled, ticket.Status)
}

func TestAccept_AlreadyDecidedRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()
	q := f.issueAndSubmit(t, a)

	_, err := f.service.Accept(ctx, q.ID, a)
	require.NoError(t, err)

	_, err = f.service.Accept(ctx, q.ID, a)
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))
	_, err = f.service.Decline(ctx, q.ID, a)
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestAccept_BeforeSubmissionRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()
	ticket := f.newDiagnosingTicket(t, a)

	q, err := f.service.Issue(ctx, &quotes.Quote{TicketID: ticket.ID, Amount: money("120.00")}, a)
	require.NoError(t, err)

	// QUOTE_ISSUED has no edge to APPROVED; the quote stays undecided.
	_, err = f.service.Accept(ctx, q.ID, a)
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))

	stored, err := f.service.GetByID(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, quotes.StatusIssued, stored.Status)
}
