package ledger

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
)

// PositionRepository defines operations on stock positions.
type PositionRepository interface {
	// Find returns the position for a pair, or (nil, nil) when absent.
	Find(ctx context.Context, productID, warehouseID id.ID) (*StockPosition, error)

	// FindForUpdate returns the position with a row lock, or (nil, nil)
	// when absent. Must be called inside a transaction; the lock
	// serializes concurrent writers on the same pair.
	FindForUpdate(ctx context.Context, productID, warehouseID id.ID) (*StockPosition, error)

	// Upsert inserts or updates a position. The (productID, warehouseID)
	// pair is the natural key: a second movement against the same pair
	// resolves to the same row. Increments Version on write.
	Upsert(ctx context.Context, position *StockPosition) error

	// ListByWarehouse returns positions held in a warehouse.
	ListByWarehouse(ctx context.Context, warehouseID id.ID, filter PositionFilter) ([]StockPosition, error)

	// ListByProduct returns positions across all warehouses for a product.
	ListByProduct(ctx context.Context, productID id.ID) ([]StockPosition, error)
}

// PositionFilter for filtering position queries.
type PositionFilter struct {
	ProductIDs  []id.ID
	ExcludeZero bool
	Limit       int
	Offset      int
}

// LogRepository defines operations on the append-only movement log.
type LogRepository interface {
	// Append writes log entries. Entries are immutable once written.
	Append(ctx context.Context, entries ...LogEntry) error

	// History returns log entries matching the filter, newest first.
	History(ctx context.Context, filter LogFilter) ([]LogEntry, error)

	// SumChanges returns the sum of ChangeAmount for a pair.
	// Reconciliation: the result must equal the position's quantity.
	SumChanges(ctx context.Context, productID, warehouseID id.ID) (types.Quantity, error)
}

// LogFilter for filtering movement history.
type LogFilter struct {
	ProductID   *id.ID
	WarehouseID *id.ID
	ProcessType *ProcessType
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// ExistenceChecker resolves whether a catalog entity exists.
// The product and warehouse catalogs supply implementations.
type ExistenceChecker interface {
	Exists(ctx context.Context, entityID id.ID) (bool, error)
}
