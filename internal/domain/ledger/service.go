package ledger

import (
	"context"
	"fmt"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/security"
	"stocktrack/internal/core/tx"
	"stocktrack/internal/core/types"
	"stocktrack/pkg/logger"
)

// Service orchestrates single-warehouse stock adjustments and exposes
// read access to positions and the movement log.
//
// Every mutation runs inside one transaction: position rows are loaded
// with a row lock, mutated, and the matching log entry appended in the
// same commit. A failure at any step leaves positions and log untouched.
type Service struct {
	positions  PositionRepository
	log        LogRepository
	products   ExistenceChecker
	warehouses ExistenceChecker
	txManager  tx.Manager
}

// NewService creates a new ledger service.
func NewService(
	positions PositionRepository,
	log LogRepository,
	products ExistenceChecker,
	warehouses ExistenceChecker,
	txManager tx.Manager,
) *Service {
	return &Service{
		positions:  positions,
		log:        log,
		products:   products,
		warehouses: warehouses,
		txManager:  txManager,
	}
}

// Apply performs a single-warehouse stock adjustment and returns the
// updated position snapshot.
//
// Receiving increases quantity and, when a unit price is present,
// re-blends the average cost and records the last purchase price.
// Return increases quantity at the unchanged average cost. Shrinkage
// decreases quantity with no cost effect and is rejected with
// InsufficientStock if it would drive the position below zero.
func (s *Service) Apply(ctx context.Context, productID, warehouseID id.ID, adj Adjustment) (*StockPosition, error) {
	if adj == nil {
		return nil, apperror.NewInvalidProcessType("<nil>")
	}
	if !adj.Quantity().IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", adj.Quantity().Int64())
	}

	if err := s.checkPairExists(ctx, productID, warehouseID); err != nil {
		return nil, err
	}

	var result *StockPosition
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pos, err := s.positions.FindForUpdate(ctx, productID, warehouseID)
		if err != nil {
			return fmt.Errorf("load position: %w", err)
		}
		if pos == nil {
			pos = NewStockPosition(productID, warehouseID)
		}

		entry := NewLogEntry(productID, warehouseID, 0, "", security.GetUserID(ctx))

		switch a := adj.(type) {
		case Receiving:
			if a.UnitPrice != nil {
				pos.AverageCost = BlendCost(pos.Quantity, pos.AverageCost, a.Qty, *a.UnitPrice)
				pos.LastPurchasePrice = *a.UnitPrice
			}
			pos.Quantity += a.Qty
			entry.ChangeAmount = a.Qty
			entry.ProcessType = ProcessReceiving
			entry.UnitPrice = a.UnitPrice
			entry.TaxRate = a.TaxRate

		case Return:
			pos.Quantity += a.Qty
			entry.ChangeAmount = a.Qty
			entry.ProcessType = ProcessReturn

		case Shrinkage:
			if !pos.CanDecrement(a.Qty) {
				return apperror.NewInsufficientStock(
					productID.String(), a.Qty.Int64(), pos.Quantity.Int64())
			}
			pos.Quantity -= a.Qty
			entry.ChangeAmount = a.Qty.Neg()
			entry.ProcessType = ProcessShrinkage

		default:
			return apperror.NewInvalidProcessType(fmt.Sprintf("%T", adj))
		}

		if err := s.positions.Upsert(ctx, pos); err != nil {
			return fmt.Errorf("upsert position: %w", err)
		}
		if err := s.log.Append(ctx, entry); err != nil {
			return fmt.Errorf("append log entry: %w", err)
		}

		result = pos
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "applied stock movement",
		"product_id", productID,
		"warehouse_id", warehouseID,
		"process_type", processName(adj),
		"quantity", adj.Quantity().Int64(),
	)

	return result, nil
}

// GetPosition returns the current position for a pair.
func (s *Service) GetPosition(ctx context.Context, productID, warehouseID id.ID) (*StockPosition, error) {
	pos, err := s.positions.Find(ctx, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("find position: %w", err)
	}
	if pos == nil {
		return nil, apperror.NewNotFound("stock position",
			fmt.Sprintf("%s@%s", productID, warehouseID))
	}
	return pos, nil
}

// GetWarehouseStock returns all non-zero positions in a warehouse.
func (s *Service) GetWarehouseStock(ctx context.Context, warehouseID id.ID) ([]StockPosition, error) {
	return s.positions.ListByWarehouse(ctx, warehouseID, PositionFilter{ExcludeZero: true})
}

// GetProductAvailability returns available quantity across warehouses.
func (s *Service) GetProductAvailability(ctx context.Context, productID id.ID) (types.Quantity, error) {
	positions, err := s.positions.ListByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("list positions: %w", err)
	}

	var total types.Quantity
	for _, p := range positions {
		total += p.Quantity
	}

	return total, nil
}

// GetHistory returns movement log entries matching the filter.
func (s *Service) GetHistory(ctx context.Context, filter LogFilter) ([]LogEntry, error) {
	return s.log.History(ctx, filter)
}

// ValuationRow is one line of the stock valuation report.
type ValuationRow struct {
	ProductID   id.ID          `json:"productId"`
	WarehouseID id.ID          `json:"warehouseId"`
	Quantity    types.Quantity `json:"quantity"`
	AverageCost types.Money    `json:"averageCost"`
	Total       types.Money    `json:"total"`
}

// GetValuation returns quantity x average-cost totals for a warehouse.
func (s *Service) GetValuation(ctx context.Context, warehouseID id.ID) ([]ValuationRow, error) {
	positions, err := s.positions.ListByWarehouse(ctx, warehouseID, PositionFilter{ExcludeZero: true})
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}

	rows := make([]ValuationRow, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, ValuationRow{
			ProductID:   p.ProductID,
			WarehouseID: p.WarehouseID,
			Quantity:    p.Quantity,
			AverageCost: p.AverageCost,
			Total:       p.ValuationTotal(),
		})
	}

	return rows, nil
}

// Reconcile verifies ledger completeness for a pair: the sum of log
// ChangeAmount values must equal the position's current quantity.
func (s *Service) Reconcile(ctx context.Context, productID, warehouseID id.ID) error {
	sum, err := s.log.SumChanges(ctx, productID, warehouseID)
	if err != nil {
		return fmt.Errorf("sum changes: %w", err)
	}

	pos, err := s.positions.Find(ctx, productID, warehouseID)
	if err != nil {
		return fmt.Errorf("find position: %w", err)
	}

	var current types.Quantity
	if pos != nil {
		current = pos.Quantity
	}

	if sum != current {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "ledger does not reconcile with position").
			WithDetail("product_id", productID.String()).
			WithDetail("warehouse_id", warehouseID.String()).
			WithDetail("ledger_sum", sum.Int64()).
			WithDetail("position_quantity", current.Int64())
	}

	return nil
}

// checkPairExists validates product and warehouse references.
func (s *Service) checkPairExists(ctx context.Context, productID, warehouseID id.ID) error {
	ok, err := s.products.Exists(ctx, productID)
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}

	ok, err = s.warehouses.Exists(ctx, warehouseID)
	if err != nil {
		return fmt.Errorf("check warehouse: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("warehouse", warehouseID.String())
	}

	return nil
}

func processName(adj Adjustment) ProcessType {
	switch adj.(type) {
	case Receiving:
		return ProcessReceiving
	case Return:
		return ProcessReturn
	case Shrinkage:
		return ProcessShrinkage
	default:
		return ""
	}
}
