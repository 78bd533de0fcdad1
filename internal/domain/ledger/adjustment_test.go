package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
)

// Adjustment is sealed by the unexported adjustment method, so a kind
// unknown to the Apply switch can only be built from inside the package.

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubPositions struct{}

func (stubPositions) Find(ctx context.Context, productID, warehouseID id.ID) (*StockPosition, error) {
	return nil, nil
}

func (stubPositions) FindForUpdate(ctx context.Context, productID, warehouseID id.ID) (*StockPosition, error) {
	return nil, nil
}

func (stubPositions) Upsert(ctx context.Context, position *StockPosition) error { return nil }

func (stubPositions) ListByWarehouse(ctx context.Context, warehouseID id.ID, filter PositionFilter) ([]StockPosition, error) {
	return nil, nil
}

func (stubPositions) ListByProduct(ctx context.Context, productID id.ID) ([]StockPosition, error) {
	return nil, nil
}

type stubLog struct{}

func (stubLog) Append(ctx context.Context, entries ...LogEntry) error { return nil }

func (stubLog) History(ctx context.Context, filter LogFilter) ([]LogEntry, error) {
	return nil, nil
}

func (stubLog) SumChanges(ctx context.Context, productID, warehouseID id.ID) (types.Quantity, error) {
	return 0, nil
}

type alwaysExists struct{}

func (alwaysExists) Exists(ctx context.Context, entityID id.ID) (bool, error) { return true, nil }

type unknownAdjustment struct{}

func (unknownAdjustment) Quantity() types.Quantity { return 1 }

func (unknownAdjustment) adjustment() {}

func TestApply_UnknownAdjustmentKind(t *testing.T) {
	svc := NewService(stubPositions{}, stubLog{}, alwaysExists{}, alwaysExists{}, passthroughTx{})

	_, err := svc.Apply(context.Background(), id.New(), id.New(), unknownAdjustment{})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidProcessType))
}

func TestApply_NilAdjustment(t *testing.T) {
	svc := NewService(stubPositions{}, stubLog{}, alwaysExists{}, alwaysExists{}, passthroughTx{})

	_, err := svc.Apply(context.Background(), id.New(), id.New(), nil)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidProcessType))
}
