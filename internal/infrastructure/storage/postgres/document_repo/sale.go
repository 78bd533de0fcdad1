// Package document_repo provides PostgreSQL implementations for
// document repositories (sales, transfers).
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stocktrack/internal/core/id"
	"stocktrack/internal/domain/sales"
	"stocktrack/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

// SaleRepo implements sales.Repository. Sale headers are written once
// at consumption time and never modified afterwards.
type SaleRepo struct {
	txManager  *postgres.TxManager
	inserter   *postgres.BatchInserter
	builder    squirrel.StatementBuilderType
	headerCols []string
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager:  txManager,
		inserter:   postgres.NewBatchInserter(txManager),
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		headerCols: postgres.ExtractDBColumns[sales.Sale](),
	}
}

var saleLineCols = []string{
	"sale_id", "line_id", "line_no",
	"product_id", "quantity", "unit_price", "unit_cost", "amount",
}

// Create inserts the sale header.
func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	data := postgres.StructToMap(sale)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in sale")
	}

	filteredData := make(map[string]any, len(r.headerCols))
	for _, col := range r.headerCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.builder.Insert(salesTable).SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	return nil
}

// SaveLines replaces the sale's lines. Uses COPY when inside a transaction.
func (r *SaleRepo) SaveLines(ctx context.Context, saleID id.ID, lines []sales.SaleLine) error {
	delQ := r.builder.Delete(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleID})

	sql, args, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete lines: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		rows := make([][]any, 0, len(lines))
		for _, l := range lines {
			rows = append(rows, []any{
				saleID, l.LineID, l.LineNo,
				l.ProductID, l.Quantity, l.UnitPrice, l.UnitCost, l.Amount,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, saleLinesTable, saleLineCols, rows); err != nil {
			return fmt.Errorf("copy lines: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(saleLinesTable).Columns(saleLineCols...)
	for _, l := range lines {
		q = q.Values(
			saleID, l.LineID, l.LineNo,
			l.ProductID, l.Quantity, l.UnitPrice, l.UnitCost, l.Amount,
		)
	}

	sql, args, err = q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// GetByID retrieves the sale header, or (nil, nil) when absent.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	q := r.builder.Select(r.headerCols...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sale sales.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	return &sale, nil
}

// GetLines retrieves the sale's lines ordered by line number.
func (r *SaleRepo) GetLines(ctx context.Context, saleID id.ID) ([]sales.SaleLine, error) {
	q := r.builder.Select(
		"line_id", "line_no",
		"product_id", "quantity", "unit_price", "unit_cost", "amount",
	).From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sales.SaleLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}

	return lines, nil
}

// List retrieves sales matching the filter, newest first.
func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) ([]sales.Sale, error) {
	q := r.builder.Select(r.headerCols...).
		From(salesTable)

	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
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

	var items []sales.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}

	return items, nil
}

// Ensure interface compliance.
var _ sales.Repository = (*SaleRepo)(nil)
