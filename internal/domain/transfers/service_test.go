package transfers_test

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
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/ledger/ledgertest"
	"stocktrack/internal/domain/transfers"
	"stocktrack/pkg/numerator"
)

type memTransferRepo struct {
	mu        sync.Mutex
	transfers map[id.ID]transfers.Transfer
}

func newMemTransferRepo() *memTransferRepo {
	return &memTransferRepo{transfers: make(map[id.ID]transfers.Transfer)}
}

func (r *memTransferRepo) Create(ctx context.Context, t *transfers.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[t.ID] = *t
	return nil
}

func (r *memTransferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfers.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transfers[transferID]; ok {
		cp := t
		return &cp, nil
	}
	return nil, nil
}

func (r *memTransferRepo) GetByIDForUpdate(ctx context.Context, transferID id.ID) (*transfers.Transfer, error) {
	return r.GetByID(ctx, transferID)
}

func (r *memTransferRepo) Update(ctx context.Context, t *transfers.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[t.ID] = *t
	return nil
}

func (r *memTransferRepo) List(ctx context.Context, filter transfers.ListFilter) ([]transfers.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []transfers.Transfer
	for _, t := range r.transfers {
		out = append(out, t)
	}
	return out, nil
}

type fixture struct {
	svc       *transfers.Service
	repo      *memTransferRepo
	positions *ledgertest.PositionRepo
	log       *ledgertest.LogRepo
	productID id.ID
	source    id.ID
	target    id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	productID := id.New()
	sourceID := id.New()
	targetID := id.New()

	positions := ledgertest.NewPositionRepo()
	logRepo := ledgertest.NewLogRepo()
	repo := newMemTransferRepo()

	svc := transfers.NewService(
		repo,
		positions,
		logRepo,
		ledgertest.NewChecker(productID),
		ledgertest.NewChecker(sourceID, targetID),
		&numerator.MockGenerator{},
		ledgertest.TxManager{},
	)

	return &fixture{
		svc:       svc,
		repo:      repo,
		positions: positions,
		log:       logRepo,
		productID: productID,
		source:    sourceID,
		target:    targetID,
	}
}

func (f *fixture) seedSource(t *testing.T, qty types.Quantity, avgCost string) {
	t.Helper()
	pos := ledger.NewStockPosition(f.productID, f.source)
	pos.Quantity = qty
	pos.AverageCost = types.MustMoney(avgCost)
	require.NoError(t, f.positions.Upsert(context.Background(), pos))
}

func ctxWithActor() context.Context {
	return security.WithUserID(context.Background(), "storekeeper")
}

func TestCreate_DecrementsSourceAndLogsTransferOut(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, 10, "100")

	tr, err := f.svc.Create(ctxWithActor(), f.source, f.target, f.productID, 5)
	require.NoError(t, err)

	assert.Equal(t, transfers.StatusPending, tr.Status)
	assert.Equal(t, "storekeeper", tr.CreatedBy)
	assert.NotEmpty(t, tr.Number)

	source, err := f.positions.Find(context.Background(), f.productID, f.source)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(5), source.Quantity)
	assert.True(t, source.AverageCost.Equal(types.MustMoney("100")))

	entries := f.log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, ledger.ProcessTransferOut, entries[0].ProcessType)
	assert.Equal(t, types.Quantity(-5), entries[0].ChangeAmount)
	assert.Equal(t, f.source, entries[0].WarehouseID)
	require.NotNil(t, entries[0].TransferID)
	assert.Equal(t, tr.ID, *entries[0].TransferID)
}

func TestCreate_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, 3, "100")

	_, err := f.svc.Create(ctxWithActor(), f.source, f.target, f.productID, 5)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// No mutation, no log entry
	source, err := f.positions.Find(context.Background(), f.productID, f.source)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(3), source.Quantity)
	assert.Empty(t, f.log.Entries())
}

func TestCreate_AbsentSourcePosition(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(ctxWithActor(), f.source, f.target, f.productID, 1)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestCreate_SameWarehouseRejected(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, 10, "100")

	_, err := f.svc.Create(ctxWithActor(), f.source, f.source, f.productID, 1)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestApprove_BlendsCostIntoTarget(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, 10, "100")

	// Target already holds 10 units at 200; transferring 10 at source
	// cost 100 blends to 150.
	targetPos := ledger.NewStockPosition(f.productID, f.target)
	targetPos.Quantity = 10
	targetPos.AverageCost = types.MustMoney("200")
	require.NoError(t, f.positions.Upsert(context.Background(), targetPos))

	tr, err := f.svc.Create(ctxWithActor(), f.source, f.target, f.productID, 10)
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctxWithActor(), tr.ID)
	require.NoError(t, err)

	assert.Equal(t, transfers.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "storekeeper", *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	target, err := f.positions.Find(context.Background(), f.productID, f.target)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(20), target.Quantity)
	assert.True(t, target.AverageCost.Equal(types.MustMoney("150")), "got %s", target.AverageCost)

	// TransferIn entry carries the source cost as inbound price
	entries := f.log.Entries()
	require.Len(t, entries, 2)
	in := entries[1]
	assert.Equal(t, ledger.ProcessTransferIn, in.ProcessType)
	assert.Equal(t, types.Quantity(10), in.ChangeAmount)
	assert.Equal(t, f.target, in.WarehouseID)
	require.NotNil(t, in.UnitPrice)
	assert.True(t, in.UnitPrice.Equal(types.MustMoney("100")))
}

func TestApprove_CreatesTargetPosition(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, 5, "80")

	tr, err := f.svc.Create(ctxWithActor(), f.source, f.target, f.productID, 5)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctxWithActor(), tr.ID)
	require.NoError(t, err)

	target, err := f.positions.Find(context.Background(), f.productID, f.target)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(5), target.Quantity)
	assert.True(t, target.AverageCost.Equal(types.MustMoney("80")))
}

func TestApprove_ReReadsSourceCostAtApprovalTime(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, 10, "100")

	tr, err := f.svc.Create(ctxWithActor(), f.source, f.target, f.productID, 5)
	require.NoError(t, err)

	// Source cost changes between initiation and approval.
	source, err := f.positions.Find(context.Background(), f.productID, f.source)
	require.NoError(t, err)
	source.AverageCost = types.MustMoney("300")
	require.NoError(t, f.positions.Upsert(context.Background(), source))

	_, err = f.svc.Approve(ctxWithActor(), tr.ID)
	require.NoError(t, err)

	target, err := f.positions.Find(context.Background(), f.productID, f.target)
	require.NoError(t, err)
	assert.True(t, target.AverageCost.Equal(types.MustMoney("300")), "got %s", target.AverageCost)
}

func TestCancel_RestoresSource(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, 10, "100")

	tr, err := f.svc.Create(ctxWithActor(), f.source, f.target, f.productID, 5)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctxWithActor(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, transfers.StatusCancelled, cancelled.Status)

	source, err := f.positions.Find(context.Background(), f.productID, f.source)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(10), source.Quantity)
	assert.True(t, source.AverageCost.Equal(types.MustMoney("100")))

	// Target untouched
	target, err := f.positions.Find(context.Background(), f.productID, f.target)
	require.NoError(t, err)
	assert.Nil(t, target)

	entries := f.log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.ProcessTransferCancelled, entries[1].ProcessType)
	assert.Equal(t, types.Quantity(5), entries[1].ChangeAmount)
}

func TestApproveOrCancel_TerminalStateRejected(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, 10, "100")

	tr, err := f.svc.Create(ctxWithActor(), f.source, f.target, f.productID, 5)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctxWithActor(), tr.ID)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctxWithActor(), tr.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransferState))

	_, err = f.svc.Cancel(ctxWithActor(), tr.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransferState))
}

func TestApproveOrCancel_TransferNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Approve(ctxWithActor(), id.New())
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Cancel(ctxWithActor(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	f.seedSource(t, 10, "100")

	_, err := f.svc.Create(ctxWithActor(), f.source, f.target, id.New(), 1)
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.svc.Create(ctxWithActor(), id.New(), f.target, f.productID, 1)
	assert.True(t, apperror.IsNotFound(err))
}
