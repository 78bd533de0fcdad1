package sales

import (
	"context"
	"fmt"
	"time"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/security"
	"stocktrack/internal/core/tx"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/audit"
	"stocktrack/internal/domain/catalogs/product"
	"stocktrack/internal/domain/ledger"
	"stocktrack/pkg/logger"
	"stocktrack/pkg/numerator"
)

// ProductLookup resolves products for existence and catalog price.
// The product catalog service satisfies it.
type ProductLookup interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// LineRequest is one requested sale line.
type LineRequest struct {
	ProductID id.ID

	// Quantity requested (whole units, must be positive)
	Quantity types.Quantity

	// UnitPriceOverride replaces the catalog sale price when set
	UnitPriceOverride *types.Money
}

// Service validates and atomically consumes stock for sales.
//
// The whole batch is staged before any durable write: every line is
// resolved and checked, decrements are computed in memory, and only
// then are positions and the sale persisted, all in one commit. If any
// line fails the sale is rejected in its entirety.
type Service struct {
	repo       Repository
	positions  ledger.PositionRepository
	products   ProductLookup
	warehouses ledger.ExistenceChecker
	numerator  numerator.Generator
	txManager  tx.Manager
}

// NewService creates a new sale consumption service.
func NewService(
	repo Repository,
	positions ledger.PositionRepository,
	products ProductLookup,
	warehouses ledger.ExistenceChecker,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		positions:  positions,
		products:   products,
		warehouses: warehouses,
		numerator:  numerator,
		txManager:  txManager,
	}
}

// Consume decrements stock for every requested line and persists the
// sale with per-line unit-cost snapshots. All-or-nothing: a failure on
// any line leaves every position unchanged.
func (s *Service) Consume(ctx context.Context, warehouseID id.ID, lines []LineRequest) (*Sale, error) {
	if len(lines) == 0 {
		return nil, apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	ok, err := s.warehouses.Exists(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("check warehouse: %w", err)
	}
	if !ok {
		return nil, apperror.NewNotFound("warehouse", warehouseID.String())
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SO"), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	sale := NewSale(warehouseID)
	sale.Number = number
	audit.EnrichCreatedByDirect(ctx, &sale.CreatedBy, &sale.UpdatedBy)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Stage: resolve and check every line, computing decrements in
		// memory. Positions are keyed so duplicate product lines share
		// one staged row.
		staged := make(map[id.ID]*ledger.StockPosition)

		for _, line := range lines {
			prod, err := s.products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}

			pos, ok := staged[line.ProductID]
			if !ok {
				pos, err = s.positions.FindForUpdate(ctx, line.ProductID, warehouseID)
				if err != nil {
					return fmt.Errorf("load position: %w", err)
				}
				if pos == nil {
					return apperror.NewNotFound("stock position",
						fmt.Sprintf("%s@%s", line.ProductID, warehouseID))
				}
				staged[line.ProductID] = pos
			}

			if !pos.CanDecrement(line.Quantity) {
				return apperror.NewInsufficientStock(
					line.ProductID.String(), line.Quantity.Int64(), pos.Quantity.Int64())
			}

			unitCost := pos.AverageCost
			pos.Quantity -= line.Quantity

			unitPrice := prod.SalePrice
			if line.UnitPriceOverride != nil {
				unitPrice = *line.UnitPriceOverride
			}

			sale.AddLine(line.ProductID, line.Quantity, unitPrice, unitCost)
		}

		// Commit: every line passed, write staged positions and the sale.
		for _, pos := range staged {
			if err := s.positions.Upsert(ctx, pos); err != nil {
				return fmt.Errorf("upsert position: %w", err)
			}
		}

		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.SaveLines(ctx, sale.ID, sale.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale consumed",
		"id", sale.ID,
		"number", sale.Number,
		"warehouse_id", warehouseID,
		"lines", len(sale.Lines),
		"actor", security.GetUserID(ctx),
	)

	return sale, nil
}

// GetByID retrieves a sale with lines.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}

	lines, err := s.repo.GetLines(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	sale.Lines = lines

	return sale, nil
}

// List retrieves sales matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	return s.repo.List(ctx, filter)
}
