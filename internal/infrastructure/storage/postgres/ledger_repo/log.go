package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/infrastructure/storage/postgres"
)

const movementLogTable = "stock_movement_log"

var movementLogCols = []string{
	"id", "product_id", "warehouse_id",
	"change_amount", "process_type",
	"unit_price", "tax_rate", "transfer_id",
	"created_by", "created_at",
}

// LogRepo implements ledger.LogRepository. The table is append-only:
// there are no UPDATE or DELETE paths.
type LogRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewLogRepo creates a new movement log repository.
func NewLogRepo(txManager *postgres.TxManager) *LogRepo {
	return &LogRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append writes log entries. Uses COPY when inside a transaction.
func (r *LogRepo) Append(ctx context.Context, entries ...ledger.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		rows := make([][]any, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []any{
				e.ID, e.ProductID, e.WarehouseID,
				e.ChangeAmount, e.ProcessType,
				e.UnitPrice, e.TaxRate, e.TransferID,
				e.CreatedBy, e.CreatedAt,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, movementLogTable, movementLogCols, rows); err != nil {
			return fmt.Errorf("copy log entries: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert. Prefer calling Append within tx.
	q := r.builder.Insert(movementLogTable).Columns(movementLogCols...)
	for _, e := range entries {
		q = q.Values(
			e.ID, e.ProductID, e.WarehouseID,
			e.ChangeAmount, e.ProcessType,
			e.UnitPrice, e.TaxRate, e.TransferID,
			e.CreatedBy, e.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert log entries: %w", err)
	}

	return nil
}

// History returns log entries matching the filter, newest first.
func (r *LogRepo) History(ctx context.Context, filter ledger.LogFilter) ([]ledger.LogEntry, error) {
	q := r.builder.Select(movementLogCols...).
		From(movementLogTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}

	if filter.ProcessType != nil {
		q = q.Where(squirrel.Eq{"process_type": *filter.ProcessType})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	// IDs are UUIDv7, so the id tiebreak preserves insertion order
	// within equal timestamps.
	q = q.OrderBy("created_at DESC", "id DESC")

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

	var entries []ledger.LogEntry
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return entries, nil
}

// SumChanges returns the sum of ChangeAmount for a pair. Reconciliation
// compares this against the position's current quantity.
func (r *LogRepo) SumChanges(ctx context.Context, productID, warehouseID id.ID) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(SUM(change_amount), 0)
		FROM stock_movement_log
		WHERE product_id = $1 AND warehouse_id = $2
	`

	var sum int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, productID, warehouseID).Scan(&sum)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("sum changes: %w", err)
	}

	return types.Quantity(sum), nil
}

// Ensure interface compliance.
var _ ledger.LogRepository = (*LogRepo)(nil)
