// Package ledger_repo provides PostgreSQL implementations for the
// stock ledger: positions and the movement log.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/infrastructure/storage/postgres"
)

const positionsTable = "stock_positions"

// PositionRepo implements ledger.PositionRepository.
type PositionRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewPositionRepo creates a new stock position repository.
func NewPositionRepo(txManager *postgres.TxManager) *PositionRepo {
	return &PositionRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var positionCols = []string{
	"product_id", "warehouse_id",
	"quantity", "average_cost", "last_purchase_price",
	"version", "updated_at",
}

// Find returns the position for a pair, or (nil, nil) when absent.
func (r *PositionRepo) Find(ctx context.Context, productID, warehouseID id.ID) (*ledger.StockPosition, error) {
	q := r.builder.Select(positionCols...).
		From(positionsTable).
		Where(squirrel.Eq{
			"product_id":   productID,
			"warehouse_id": warehouseID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var pos ledger.StockPosition
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &pos, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find position: %w", err)
	}

	return &pos, nil
}

// FindForUpdate returns the position with a row lock, or (nil, nil)
// when absent. The lock serializes concurrent writers on the pair.
func (r *PositionRepo) FindForUpdate(ctx context.Context, productID, warehouseID id.ID) (*ledger.StockPosition, error) {
	sql := `
		SELECT product_id, warehouse_id, quantity, average_cost, last_purchase_price, version, updated_at
		FROM stock_positions
		WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE
	`

	var pos ledger.StockPosition
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &pos, sql, productID, warehouseID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find position for update: %w", err)
	}

	return &pos, nil
}

// Upsert inserts or updates a position. The (product_id, warehouse_id)
// pair is the natural key, so a second movement against the same pair
// resolves to the same row. Version increments on every write.
func (r *PositionRepo) Upsert(ctx context.Context, position *ledger.StockPosition) error {
	sql := `
		INSERT INTO stock_positions (
			product_id, warehouse_id, quantity, average_cost, last_purchase_price, version, updated_at
		) VALUES ($1, $2, $3, $4, $5, 1, NOW())
		ON CONFLICT (product_id, warehouse_id) DO UPDATE SET
			quantity            = EXCLUDED.quantity,
			average_cost        = EXCLUDED.average_cost,
			last_purchase_price = EXCLUDED.last_purchase_price,
			version             = stock_positions.version + 1,
			updated_at          = NOW()
		RETURNING version, updated_at
	`

	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql,
		position.ProductID, position.WarehouseID,
		position.Quantity, position.AverageCost, position.LastPurchasePrice,
	).Scan(&position.Version, &position.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert position: %w", err)
	}

	return nil
}

// ListByWarehouse returns positions held in a warehouse.
func (r *PositionRepo) ListByWarehouse(ctx context.Context, warehouseID id.ID, filter ledger.PositionFilter) ([]ledger.StockPosition, error) {
	q := r.builder.Select(positionCols...).
		From(positionsTable).
		Where(squirrel.Eq{"warehouse_id": warehouseID})

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}

	q = q.OrderBy("product_id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var positions []ledger.StockPosition
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &positions, sql, args...); err != nil {
		return nil, fmt.Errorf("select positions: %w", err)
	}

	return positions, nil
}

// ListByProduct returns positions across all warehouses for a product.
func (r *PositionRepo) ListByProduct(ctx context.Context, productID id.ID) ([]ledger.StockPosition, error) {
	q := r.builder.Select(positionCols...).
		From(positionsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("warehouse_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var positions []ledger.StockPosition
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &positions, sql, args...); err != nil {
		return nil, fmt.Errorf("select positions: %w", err)
	}

	return positions, nil
}

// Ensure interface compliance.
var _ ledger.PositionRepository = (*PositionRepo)(nil)
