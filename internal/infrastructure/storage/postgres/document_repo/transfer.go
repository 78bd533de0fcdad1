package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/transfers"
	"stocktrack/internal/infrastructure/storage/postgres"
)

const transfersTable = "doc_transfers"

// TransferRepo implements transfers.Repository.
type TransferRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	selectCols []string
}

// NewTransferRepo creates a new transfer repository.
func NewTransferRepo(txManager *postgres.TxManager) *TransferRepo {
	return &TransferRepo{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[transfers.Transfer](),
	}
}

// Create inserts a new transfer.
func (r *TransferRepo) Create(ctx context.Context, transfer *transfers.Transfer) error {
	data := postgres.StructToMap(transfer)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in transfer")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder.Insert(transfersTable).SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}

	return nil
}

// GetByID retrieves a transfer, or (nil, nil) when absent.
func (r *TransferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfers.Transfer, error) {
	q := r.builder.Select(r.selectCols...).
		From(transfersTable).
		Where(squirrel.Eq{"id": transferID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var transfer transfers.Transfer
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &transfer, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}

	return &transfer, nil
}

// GetByIDForUpdate retrieves a transfer with a row lock, or (nil, nil)
// when absent. The lock serializes concurrent approve/cancel attempts
// on the same transfer.
func (r *TransferRepo) GetByIDForUpdate(ctx context.Context, transferID id.ID) (*transfers.Transfer, error) {
	q := r.builder.Select(r.selectCols...).
		From(transfersTable).
		Where(squirrel.Eq{"id": transferID}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var transfer transfers.Transfer
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &transfer, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer for update: %w", err)
	}

	return &transfer, nil
}

// Update persists status transitions with optimistic locking.
func (r *TransferRepo) Update(ctx context.Context, transfer *transfers.Transfer) error {
	data := postgres.StructToMap(transfer)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in transfer")
	}

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("transfer has no 'version' field or it is not an int")
	}

	// Exclude immutable fields from SET
	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "created_at" || col == "created_by" {
			continue
		}
		if col == "version" || col == "updated_at" {
			continue // managed by repo
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	// The in-memory Touch already bumped version; expect the stored one.
	q := r.builder.Update(transfersTable).
		SetMap(filteredData).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": transfer.ID}).
		Where(squirrel.Eq{"version": version - 1})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(transfersTable, transfer.ID)
	}

	return nil
}

// List retrieves transfers matching the filter, newest first.
func (r *TransferRepo) List(ctx context.Context, filter transfers.ListFilter) ([]transfers.Transfer, error) {
	q := r.builder.Select(r.selectCols...).
		From(transfersTable)

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"source_warehouse_id": *filter.WarehouseID},
			squirrel.Eq{"target_warehouse_id": *filter.WarehouseID},
		})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

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

	var items []transfers.Transfer
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select transfers: %w", err)
	}

	return items, nil
}

// Ensure interface compliance.
var _ transfers.Repository = (*TransferRepo)(nil)
