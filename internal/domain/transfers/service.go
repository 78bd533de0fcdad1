package transfers

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
	"stocktrack/internal/domain/ledger"
	"stocktrack/pkg/logger"
	"stocktrack/pkg/numerator"
)

// Service drives the transfer state machine. Each transition is one
// atomic commit touching the transfer, the affected stock positions
// and the movement log together.
type Service struct {
	repo       Repository
	positions  ledger.PositionRepository
	log        ledger.LogRepository
	products   ledger.ExistenceChecker
	warehouses ledger.ExistenceChecker
	numerator  numerator.Generator
	txManager  tx.Manager
}

// NewService creates a new transfer workflow service.
func NewService(
	repo Repository,
	positions ledger.PositionRepository,
	log ledger.LogRepository,
	products ledger.ExistenceChecker,
	warehouses ledger.ExistenceChecker,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		positions:  positions,
		log:        log,
		products:   products,
		warehouses: warehouses,
		numerator:  numerator,
		txManager:  txManager,
	}
}

// Create initiates a transfer: the source position is decremented
// immediately (the stock is in transit and unavailable at the source
// from this point) and the transfer is created in Pending.
func (s *Service) Create(ctx context.Context, sourceWarehouseID, targetWarehouseID, productID id.ID, quantity types.Quantity) (*Transfer, error) {
	transfer := NewTransfer(sourceWarehouseID, targetWarehouseID, productID, quantity)
	if err := transfer.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, transfer); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("TR"), nil, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	transfer.Number = number
	audit.EnrichCreatedByDirect(ctx, &transfer.CreatedBy, &transfer.UpdatedBy)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		source, err := s.positions.FindForUpdate(ctx, productID, sourceWarehouseID)
		if err != nil {
			return fmt.Errorf("load source position: %w", err)
		}
		if source == nil || !source.CanDecrement(quantity) {
			available := int64(0)
			if source != nil {
				available = source.Quantity.Int64()
			}
			return apperror.NewInsufficientStock(productID.String(), quantity.Int64(), available)
		}

		source.Quantity -= quantity
		if err := s.positions.Upsert(ctx, source); err != nil {
			return fmt.Errorf("upsert source position: %w", err)
		}

		if err := s.repo.Create(ctx, transfer); err != nil {
			return fmt.Errorf("create transfer: %w", err)
		}

		entry := ledger.NewLogEntry(productID, sourceWarehouseID, quantity.Neg(),
			ledger.ProcessTransferOut, security.GetUserID(ctx))
		entry.TransferID = &transfer.ID
		if err := s.log.Append(ctx, entry); err != nil {
			return fmt.Errorf("append log entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transfer created",
		"id", transfer.ID,
		"number", transfer.Number,
		"product_id", productID,
		"quantity", quantity.Int64(),
	)

	return transfer, nil
}

// Approve finalizes a pending transfer: the source's average cost is
// re-read at approval time and blended into the target position, the
// target quantity is incremented, and the transfer becomes Approved.
func (s *Service) Approve(ctx context.Context, transferID id.ID) (*Transfer, error) {
	var transfer *Transfer

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = s.loadPending(ctx, transferID)
		if err != nil {
			return err
		}

		// Cost basis carries from source to target: the source's
		// current average cost is the inbound "price" for the blend.
		source, err := s.positions.Find(ctx, transfer.ProductID, transfer.SourceWarehouseID)
		if err != nil {
			return fmt.Errorf("load source position: %w", err)
		}
		sourceCost := types.ZeroMoney()
		if source != nil {
			sourceCost = source.AverageCost
		}

		target, err := s.positions.FindForUpdate(ctx, transfer.ProductID, transfer.TargetWarehouseID)
		if err != nil {
			return fmt.Errorf("load target position: %w", err)
		}
		if target == nil {
			target = ledger.NewStockPosition(transfer.ProductID, transfer.TargetWarehouseID)
		}

		target.AverageCost = ledger.BlendCost(target.Quantity, target.AverageCost, transfer.Quantity, sourceCost)
		target.Quantity += transfer.Quantity
		if err := s.positions.Upsert(ctx, target); err != nil {
			return fmt.Errorf("upsert target position: %w", err)
		}

		transfer.MarkApproved(security.GetUserID(ctx), time.Now().UTC())
		if err := s.repo.Update(ctx, transfer); err != nil {
			return fmt.Errorf("update transfer: %w", err)
		}

		entry := ledger.NewLogEntry(transfer.ProductID, transfer.TargetWarehouseID, transfer.Quantity,
			ledger.ProcessTransferIn, security.GetUserID(ctx))
		entry.TransferID = &transfer.ID
		entry.UnitPrice = &sourceCost
		if err := s.log.Append(ctx, entry); err != nil {
			return fmt.Errorf("append log entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transfer approved", "id", transfer.ID, "number", transfer.Number)
	return transfer, nil
}

// Cancel reverses a pending transfer: the source quantity is restored
// (average cost untouched) and the transfer becomes Cancelled.
func (s *Service) Cancel(ctx context.Context, transferID id.ID) (*Transfer, error) {
	var transfer *Transfer

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		transfer, err = s.loadPending(ctx, transferID)
		if err != nil {
			return err
		}

		source, err := s.positions.FindForUpdate(ctx, transfer.ProductID, transfer.SourceWarehouseID)
		if err != nil {
			return fmt.Errorf("load source position: %w", err)
		}
		if source == nil {
			source = ledger.NewStockPosition(transfer.ProductID, transfer.SourceWarehouseID)
		}

		source.Quantity += transfer.Quantity
		if err := s.positions.Upsert(ctx, source); err != nil {
			return fmt.Errorf("upsert source position: %w", err)
		}

		transfer.MarkCancelled()
		if err := s.repo.Update(ctx, transfer); err != nil {
			return fmt.Errorf("update transfer: %w", err)
		}

		entry := ledger.NewLogEntry(transfer.ProductID, transfer.SourceWarehouseID, transfer.Quantity,
			ledger.ProcessTransferCancelled, security.GetUserID(ctx))
		entry.TransferID = &transfer.ID
		if err := s.log.Append(ctx, entry); err != nil {
			return fmt.Errorf("append log entry: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transfer cancelled", "id", transfer.ID, "number", transfer.Number)
	return transfer, nil
}

// GetByID retrieves a transfer.
func (s *Service) GetByID(ctx context.Context, transferID id.ID) (*Transfer, error) {
	transfer, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if transfer == nil {
		return nil, apperror.NewNotFound("transfer", transferID.String())
	}
	return transfer, nil
}

// List retrieves transfers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Transfer, error) {
	return s.repo.List(ctx, filter)
}

// loadPending loads a transfer with a row lock and enforces the
// terminal-state guard.
func (s *Service) loadPending(ctx context.Context, transferID id.ID) (*Transfer, error) {
	transfer, err := s.repo.GetByIDForUpdate(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if transfer == nil {
		return nil, apperror.NewNotFound("transfer", transferID.String())
	}
	if !transfer.IsPending() {
		return nil, apperror.NewInvalidTransferState(transferID.String(), string(transfer.Status))
	}
	return transfer, nil
}

// checkReferences validates product and warehouse references.
func (s *Service) checkReferences(ctx context.Context, t *Transfer) error {
	ok, err := s.products.Exists(ctx, t.ProductID)
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("product", t.ProductID.String())
	}

	for _, whID := range []id.ID{t.SourceWarehouseID, t.TargetWarehouseID} {
		ok, err := s.warehouses.Exists(ctx, whID)
		if err != nil {
			return fmt.Errorf("check warehouse: %w", err)
		}
		if !ok {
			return apperror.NewNotFound("warehouse", whID.String())
		}
	}

	return nil
}
