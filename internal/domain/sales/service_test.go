package sales_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/security"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/catalogs/product"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/ledger/ledgertest"
	"stocktrack/internal/domain/sales"
	"stocktrack/pkg/numerator"
)

type memSaleRepo struct {
	mu    sync.Mutex
	sales map[id.ID]sales.Sale
	lines map[id.ID][]sales.SaleLine
}

func newMemSaleRepo() *memSaleRepo {
	return &memSaleRepo{
		sales: make(map[id.ID]sales.Sale),
		lines: make(map[id.ID][]sales.SaleLine),
	}
}

func (r *memSaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sales[sale.ID] = *sale
	return nil
}

func (r *memSaleRepo) SaveLines(ctx context.Context, saleID id.ID, lines []sales.SaleLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[saleID] = append([]sales.SaleLine(nil), lines...)
	return nil
}

func (r *memSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sales[saleID]; ok {
		cp := s
		return &cp, nil
	}
	return nil, nil
}

func (r *memSaleRepo) GetLines(ctx context.Context, saleID id.ID) ([]sales.SaleLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sales.SaleLine(nil), r.lines[saleID]...), nil
}

func (r *memSaleRepo) List(ctx context.Context, filter sales.ListFilter) ([]sales.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sales.Sale
	for _, s := range r.sales {
		out = append(out, s)
	}
	return out, nil
}

type memProductLookup struct {
	products map[id.ID]*product.Product
}

func (l *memProductLookup) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	if p, ok := l.products[productID]; ok {
		return p, nil
	}
	return nil, apperror.NewNotFound("product", productID.String())
}

type fixture struct {
	svc       *sales.Service
	repo      *memSaleRepo
	positions *ledgertest.PositionRepo
	warehouse id.ID
	prodA     *product.Product
	prodB     *product.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	prodA := product.NewProduct("PR-1", "Widget", "SKU-A")
	prodA.SalePrice = types.MustMoney("25")
	prodB := product.NewProduct("PR-2", "Gadget", "SKU-B")
	prodB.SalePrice = types.MustMoney("40")

	warehouseID := id.New()
	positions := ledgertest.NewPositionRepo()
	repo := newMemSaleRepo()

	svc := sales.NewService(
		repo,
		positions,
		&memProductLookup{products: map[id.ID]*product.Product{
			prodA.ID: prodA,
			prodB.ID: prodB,
		}},
		ledgertest.NewChecker(warehouseID),
		&numerator.MockGenerator{},
		ledgertest.TxManager{},
	)

	return &fixture{
		svc:       svc,
		repo:      repo,
		positions: positions,
		warehouse: warehouseID,
		prodA:     prodA,
		prodB:     prodB,
	}
}

func (f *fixture) seed(t *testing.T, p *product.Product, qty types.Quantity, avgCost string) {
	t.Helper()
	pos := ledger.NewStockPosition(p.ID, f.warehouse)
	pos.Quantity = qty
	pos.AverageCost = types.MustMoney(avgCost)
	require.NoError(t, f.positions.Upsert(context.Background(), pos))
}

func ctxWithActor() context.Context {
	return security.WithUserID(context.Background(), "cashier")
}

func TestConsume_SnapshotsUnitCost(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodA, 10, "12.50")

	sale, err := f.svc.Consume(ctxWithActor(), f.warehouse, []sales.LineRequest{
		{ProductID: f.prodA.ID, Quantity: 4},
	})
	require.NoError(t, err)

	require.Len(t, sale.Lines, 1)
	assert.True(t, sale.Lines[0].UnitCost.Equal(types.MustMoney("12.50")))
	assert.True(t, sale.Lines[0].UnitPrice.Equal(types.MustMoney("25")))
	assert.True(t, sale.TotalAmount.Equal(types.MustMoney("100")), "got %s", sale.TotalAmount)
	assert.Equal(t, "cashier", sale.CreatedBy)

	pos, err := f.positions.Find(context.Background(), f.prodA.ID, f.warehouse)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(6), pos.Quantity)
	// Average cost untouched by consumption
	assert.True(t, pos.AverageCost.Equal(types.MustMoney("12.50")))
}

func TestConsume_UnitPriceOverride(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodA, 10, "10")

	override := types.MustMoney("19.99")
	sale, err := f.svc.Consume(ctxWithActor(), f.warehouse, []sales.LineRequest{
		{ProductID: f.prodA.ID, Quantity: 2, UnitPriceOverride: &override},
	})
	require.NoError(t, err)

	assert.True(t, sale.Lines[0].UnitPrice.Equal(override))
	assert.True(t, sale.TotalAmount.Equal(types.MustMoney("39.98")), "got %s", sale.TotalAmount)
}

func TestConsume_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodA, 10, "10")
	f.seed(t, f.prodB, 1, "20")

	// Second line is short: the first line must not be committed either.
	_, err := f.svc.Consume(ctxWithActor(), f.warehouse, []sales.LineRequest{
		{ProductID: f.prodA.ID, Quantity: 5},
		{ProductID: f.prodB.ID, Quantity: 2},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	posA, err := f.positions.Find(context.Background(), f.prodA.ID, f.warehouse)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(10), posA.Quantity)

	posB, err := f.positions.Find(context.Background(), f.prodB.ID, f.warehouse)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(1), posB.Quantity)

	assert.Empty(t, f.repo.sales)
}

func TestConsume_ProductNotFound(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodA, 10, "10")

	_, err := f.svc.Consume(ctxWithActor(), f.warehouse, []sales.LineRequest{
		{ProductID: id.New(), Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestConsume_StockNotFound(t *testing.T) {
	f := newFixture(t)

	// Product exists in the catalog but has no position in this warehouse.
	_, err := f.svc.Consume(ctxWithActor(), f.warehouse, []sales.LineRequest{
		{ProductID: f.prodA.ID, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestConsume_WarehouseNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Consume(ctxWithActor(), id.New(), []sales.LineRequest{
		{ProductID: f.prodA.ID, Quantity: 1},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestConsume_DuplicateProductLinesShareStock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodA, 5, "10")

	// 3 + 3 over a position of 5 must fail even though each line alone fits.
	_, err := f.svc.Consume(ctxWithActor(), f.warehouse, []sales.LineRequest{
		{ProductID: f.prodA.ID, Quantity: 3},
		{ProductID: f.prodA.ID, Quantity: 3},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	pos, err := f.positions.Find(context.Background(), f.prodA.ID, f.warehouse)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(5), pos.Quantity)
}

func TestConsume_RejectsEmptyAndNonPositive(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Consume(ctxWithActor(), f.warehouse, nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = f.svc.Consume(ctxWithActor(), f.warehouse, []sales.LineRequest{
		{ProductID: f.prodA.ID, Quantity: 0},
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestGetByID_WithLines(t *testing.T) {
	f := newFixture(t)
	f.seed(t, f.prodA, 10, "10")

	created, err := f.svc.Consume(ctxWithActor(), f.warehouse, []sales.LineRequest{
		{ProductID: f.prodA.ID, Quantity: 2},
	})
	require.NoError(t, err)

	got, err := f.svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Number, got.Number)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, types.Quantity(2), got.Lines[0].Quantity)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByID(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}
