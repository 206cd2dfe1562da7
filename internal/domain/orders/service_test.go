package orders_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"officina/internal/core/actor"
	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/core/tx"
	"officina/internal/domain/ledger"
	"officina/internal/domain/orders"
	"officina/internal/domain/sequence"
	"officina/internal/infrastructure/storage/memory"
)

type fixture struct {
	service *orders.Service
	ledger  *ledger.Service
}

func newFixture() *fixture {
	ledgerSvc := ledger.NewService(memory.NewLedgerStore())
	allocator := sequence.NewAllocator(memory.NewSequenceStore())
	return &fixture{
		service: orders.NewService(memory.NewOrderStore(), ledgerSvc, allocator, tx.Noop{}),
		ledger:  ledgerSvc,
	}
}

func admin() actor.Actor {
	return actor.Actor{ID: id.New(), Role: actor.RoleAdmin}
}

func qty(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// newIssuedOrder creates an order with the given line quantities, opens
// their stock balances at zero, and advances the order to ISSUED.
func (f *fixture) newIssuedOrder(t *testing.T, quantities ...int64) *orders.PurchaseOrder {
	t.Helper()
	ctx := context.Background()

	o := &orders.PurchaseOrder{SupplierID: id.New()}
	for _, n := range quantities {
		itemID := id.New()
		o.Lines = append(o.Lines, orders.Line{ItemID: itemID, QuantityOrdered: qty(n)})
		require.NoError(t, f.ledger.Open(ctx, itemID, ledger.KindStock, decimal.Zero, nil))
	}
	require.NoError(t, f.service.Create(ctx, o))

	issued, err := f.service.Advance(ctx, o.ID, admin())
	require.NoError(t, err)
	return issued
}

func TestCreate_NumbersGlobally(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := &orders.PurchaseOrder{
		SupplierID: id.New(),
		Lines:      []orders.Line{{ItemID: id.New(), QuantityOrdered: qty(5)}},
	}
	require.NoError(t, f.service.Create(ctx, first))
	require.Equal(t, "ORD-000001", first.Number)
	require.Equal(t, orders.StatusDraft, first.Status)

	second := &orders.PurchaseOrder{
		SupplierID: id.New(),
		Lines:      []orders.Line{{ItemID: id.New(), QuantityOrdered: qty(1)}},
	}
	require.NoError(t, f.service.Create(ctx, second))
	require.Equal(t, "ORD-000002", second.Number)
}

func TestAdvance_WalksLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	o := &orders.PurchaseOrder{
		SupplierID: id.New(),
		Lines:      []orders.Line{{ItemID: id.New(), QuantityOrdered: qty(1)}},
	}
	require.NoError(t, f.service.Create(ctx, o))

	for _, want := range []orders.Status{orders.StatusIssued, orders.StatusConfirmed, orders.StatusShipped} {
		updated, err := f.service.Advance(ctx, o.ID, a)
		require.NoError(t, err)
		require.Equal(t, want, updated.Status)
	}

	// SHIPPED has no forward step; RECEIVED comes only from receipts.
	_, err := f.service.Advance(ctx, o.ID, a)
	require.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}

func TestAdvance_TechnicianForbidden(t *testing.T) {
	f := newFixture()
	o := f.newIssuedOrder(t, 1)

	tech := actor.Actor{ID: id.New(), Role: actor.RoleTechnician}
	_, err := f.service.Advance(context.Background(), o.ID, tech)
	require.True(t, apperror.IsCode(err, apperror.CodeForbidden))
}

func TestReceive_DraftRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o := &orders.PurchaseOrder{
		SupplierID: id.New(),
		Lines:      []orders.Line{{ItemID: id.New(), QuantityOrdered: qty(5)}},
	}
	require.NoError(t, f.service.Create(ctx, o))

	_, err := f.service.Receive(ctx, o.ID, []orders.ReceiptLine{{ItemID: o.Lines[0].ItemID, Quantity: qty(5)}}, admin())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeValidation, appErr.Code)
	require.Equal(t, "order not yet issued", appErr.Message)
}

func TestReceive_PartialLeavesStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o := f.newIssuedOrder(t, 10)
	itemID := o.Lines[0].ItemID

	updated, err := f.service.Receive(ctx, o.ID, []orders.ReceiptLine{{ItemID: itemID, Quantity: qty(4)}}, admin())
	require.NoError(t, err)
	require.Equal(t, orders.StatusIssued, updated.Status)
	require.True(t, updated.Lines[0].QuantityReceived.Equal(qty(4)))

	current, err := f.ledger.GetCurrent(ctx, itemID, ledger.KindStock)
	require.NoError(t, err)
	require.True(t, current.Equal(qty(4)))

	// The movement references the purchase order.
	movements, err := f.ledger.History(ctx, itemID, ledger.KindStock)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, fmt.Sprintf("po:%s", o.ID), movements[0].Reason)
}

func TestReceive_CompletionSetsReceived(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o := f.newIssuedOrder(t, 10, 2)

	_, err := f.service.Receive(ctx, o.ID, []orders.ReceiptLine{
		{ItemID: o.Lines[0].ItemID, Quantity: qty(4)},
		{ItemID: o.Lines[1].ItemID, Quantity: qty(2)},
	}, admin())
	require.NoError(t, err)

	updated, err := f.service.Receive(ctx, o.ID, []orders.ReceiptLine{
		{ItemID: o.Lines[0].ItemID, Quantity: qty(6)},
	}, admin())
	require.NoError(t, err)
	require.Equal(t, orders.StatusReceived, updated.Status)

	// A fully received order accepts nothing more.
	_, err = f.service.Receive(ctx, o.ID, []orders.ReceiptLine{
		{ItemID: o.Lines[0].ItemID, Quantity: qty(1)},
	}, admin())
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestReceive_ExceedsRemainingRejectedWhole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o := f.newIssuedOrder(t, 10, 5)

	_, err := f.service.Receive(ctx, o.ID, []orders.ReceiptLine{
		{ItemID: o.Lines[0].ItemID, Quantity: qty(3)},
		{ItemID: o.Lines[1].ItemID, Quantity: qty(6)}, // over the ordered 5
	}, admin())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeValidation, appErr.Code)
	require.Equal(t, "quantity exceeds remaining", appErr.Message)

	// Nothing landed, not even the valid first line.
	stored, err := f.service.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, stored.Lines[0].QuantityReceived.IsZero())

	current, err := f.ledger.GetCurrent(ctx, o.Lines[0].ItemID, ledger.KindStock)
	require.NoError(t, err)
	require.True(t, current.IsZero())
}

func TestReceive_DuplicateLinesCappedBySum(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o := f.newIssuedOrder(t, 10)
	itemID := o.Lines[0].ItemID

	// Two lines for the same item are summed; 6+6 exceeds the ordered 10.
	_, err := f.service.Receive(ctx, o.ID, []orders.ReceiptLine{
		{ItemID: itemID, Quantity: qty(6)},
		{ItemID: itemID, Quantity: qty(6)},
	}, admin())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeValidation, appErr.Code)
	require.Equal(t, "quantity exceeds remaining", appErr.Message)

	stored, err := f.service.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, stored.Lines[0].QuantityReceived.IsZero())
	require.Equal(t, orders.StatusIssued, stored.Status)

	current, err := f.ledger.GetCurrent(ctx, itemID, ledger.KindStock)
	require.NoError(t, err)
	require.True(t, current.IsZero())

	// A split receipt within the cap still lands as one booking.
	updated, err := f.service.Receive(ctx, o.ID, []orders.ReceiptLine{
		{ItemID: itemID, Quantity: qty(4)},
		{ItemID: itemID, Quantity: qty(6)},
	}, admin())
	require.NoError(t, err)
	require.True(t, updated.Lines[0].QuantityReceived.Equal(qty(10)))
	require.Equal(t, orders.StatusReceived, updated.Status)
}

func TestReceive_MissingBalanceLeavesOrderUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := admin()

	// Order issued without opening a stock balance for its item.
	o := &orders.PurchaseOrder{
		SupplierID: id.New(),
		Lines:      []orders.Line{{ItemID: id.New(), QuantityOrdered: qty(5)}},
	}
	require.NoError(t, f.service.Create(ctx, o))
	_, err := f.service.Advance(ctx, o.ID, a)
	require.NoError(t, err)

	_, err = f.service.Receive(ctx, o.ID, []orders.ReceiptLine{
		{ItemID: o.Lines[0].ItemID, Quantity: qty(3)},
	}, a)
	require.True(t, apperror.IsNotFound(err))

	stored, err := f.service.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, stored.Lines[0].QuantityReceived.IsZero())
	require.Equal(t, orders.StatusIssued, stored.Status)
}

func TestReceive_UnknownItemRejected(t *testing.T) {
	f := newFixture()
	o := f.newIssuedOrder(t, 3)

	_, err := f.service.Receive(context.Background(), o.ID, []orders.ReceiptLine{
		{ItemID: id.New(), Quantity: qty(1)},
	}, admin())
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCancel_AdminOnlyAndOnlyBeforeGoods(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o := f.newIssuedOrder(t, 5)

	commercial := actor.Actor{ID: id.New(), Role: actor.RoleCommercial}
	_, err := f.service.Cancel(ctx, o.ID, commercial)
	require.True(t, apperror.IsCode(err, apperror.CodeForbidden))

	_, err = f.service.Receive(ctx, o.ID, []orders.ReceiptLine{{ItemID: o.Lines[0].ItemID, Quantity: qty(1)}}, admin())
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, o.ID, admin())
	require.True(t, apperror.IsCode(err, apperror.CodeBusinessRule))
}
