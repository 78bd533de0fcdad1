package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/security"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/ledger/ledgertest"
)

type fixture struct {
	svc       *ledger.Service
	positions *ledgertest.PositionRepo
	log       *ledgertest.LogRepo
	productID id.ID
	warehouse id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	productID := id.New()
	warehouseID := id.New()
	positions := ledgertest.NewPositionRepo()
	logRepo := ledgertest.NewLogRepo()
	svc := ledger.NewService(
		positions,
		logRepo,
		ledgertest.NewChecker(productID),
		ledgertest.NewChecker(warehouseID),
		ledgertest.TxManager{},
	)
	return &fixture{
		svc:       svc,
		positions: positions,
		log:       logRepo,
		productID: productID,
		warehouse: warehouseID,
	}
}

func ctxWithActor() context.Context {
	return security.WithUserID(context.Background(), "tester")
}

func price(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func TestApply_ReceivingCreatesPosition(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	pos, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{
		Qty:       10,
		UnitPrice: price("100"),
	})
	require.NoError(t, err)

	assert.Equal(t, types.Quantity(10), pos.Quantity)
	assert.True(t, pos.AverageCost.Equal(types.MustMoney("100")))
	assert.True(t, pos.LastPurchasePrice.Equal(types.MustMoney("100")))

	entries := f.log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.ProcessReceiving, entries[0].ProcessType)
	assert.Equal(t, types.Quantity(10), entries[0].ChangeAmount)
	assert.Equal(t, "tester", entries[0].CreatedBy)
	require.NotNil(t, entries[0].UnitPrice)
	assert.True(t, entries[0].UnitPrice.Equal(types.MustMoney("100")))
}

func TestApply_ReceivingBlendsAverageCost(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	_, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{Qty: 10, UnitPrice: price("100")})
	require.NoError(t, err)

	pos, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{Qty: 10, UnitPrice: price("200")})
	require.NoError(t, err)

	assert.Equal(t, types.Quantity(20), pos.Quantity)
	assert.True(t, pos.AverageCost.Equal(types.MustMoney("150")), "got %s", pos.AverageCost)
	assert.True(t, pos.LastPurchasePrice.Equal(types.MustMoney("200")))
}

func TestApply_ReceivingWithoutPriceKeepsCost(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	_, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{Qty: 10, UnitPrice: price("100")})
	require.NoError(t, err)

	pos, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{Qty: 5})
	require.NoError(t, err)

	assert.Equal(t, types.Quantity(15), pos.Quantity)
	assert.True(t, pos.AverageCost.Equal(types.MustMoney("100")))
	assert.True(t, pos.LastPurchasePrice.Equal(types.MustMoney("100")))
}

func TestApply_ReturnAndShrinkageNeverChangeCost(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	_, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{Qty: 10, UnitPrice: price("100")})
	require.NoError(t, err)

	pos, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Return{Qty: 3})
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(13), pos.Quantity)
	assert.True(t, pos.AverageCost.Equal(types.MustMoney("100")))

	pos, err = f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Shrinkage{Qty: 4})
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(9), pos.Quantity)
	assert.True(t, pos.AverageCost.Equal(types.MustMoney("100")))
}

func TestApply_ShrinkageInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	_, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{Qty: 5, UnitPrice: price("10")})
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Shrinkage{Qty: 6})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// State unchanged: quantity still 5, single log entry
	pos, err := f.svc.GetPosition(ctx, f.productID, f.warehouse)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(5), pos.Quantity)
	assert.Len(t, f.log.Entries(), 1)
}

func TestApply_UnknownProductOrWarehouse(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	_, err := f.svc.Apply(ctx, id.New(), f.warehouse, ledger.Receiving{Qty: 1, UnitPrice: price("1")})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Apply(ctx, f.productID, id.New(), ledger.Receiving{Qty: 1, UnitPrice: price("1")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestApply_RejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Apply(ctxWithActor(), f.productID, f.warehouse, ledger.Return{Qty: 0})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = f.svc.Apply(ctxWithActor(), f.productID, f.warehouse, ledger.Shrinkage{Qty: -5})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestApply_PositionRowIsUnique(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	_, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{Qty: 1, UnitPrice: price("1")})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Return{Qty: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, f.positions.Count())
}

func TestReconcile_LedgerCompleteness(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	_, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{Qty: 10, UnitPrice: price("100")})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Shrinkage{Qty: 3})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Return{Qty: 2})
	require.NoError(t, err)

	require.NoError(t, f.svc.Reconcile(ctx, f.productID, f.warehouse))

	sum, err := f.log.SumChanges(ctx, f.productID, f.warehouse)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(9), sum)
}

func TestGetValuation(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	_, err := f.svc.Apply(ctx, f.productID, f.warehouse, ledger.Receiving{Qty: 4, UnitPrice: price("25")})
	require.NoError(t, err)

	rows, err := f.svc.GetValuation(ctx, f.warehouse)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.Quantity(4), rows[0].Quantity)
	assert.True(t, rows[0].Total.Equal(types.MustMoney("100")), "got %s", rows[0].Total)
}

func TestGetPosition_AbsentIsNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetPosition(context.Background(), f.productID, f.warehouse)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetHistory_DateRange(t *testing.T) {
	f := newFixture(t)
	ctx := ctxWithActor()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old := ledger.NewLogEntry(f.productID, f.warehouse, 5, ledger.ProcessReceiving, "tester")
	old.CreatedAt = base.AddDate(0, 0, -2)
	mid := ledger.NewLogEntry(f.productID, f.warehouse, 3, ledger.ProcessReturn, "tester")
	mid.CreatedAt = base
	recent := ledger.NewLogEntry(f.productID, f.warehouse, -1, ledger.ProcessShrinkage, "tester")
	recent.CreatedAt = base.AddDate(0, 0, 2)
	require.NoError(t, f.log.Append(ctx, old, mid, recent))

	from := base.AddDate(0, 0, -1)
	to := base.AddDate(0, 0, 1)
	entries, err := f.svc.GetHistory(ctx, ledger.LogFilter{
		ProductID: &f.productID,
		FromDate:  &from,
		ToDate:    &to,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, mid.ID, entries[0].ID)

	// Boundaries are inclusive, matching the stored query.
	entries, err = f.svc.GetHistory(ctx, ledger.LogFilter{
		FromDate: &mid.CreatedAt,
		ToDate:   &mid.CreatedAt,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, mid.ID, entries[0].ID)
}
