package transfers

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
)

// Repository defines the interface for Transfer persistence.
type Repository interface {
	// Create inserts a new transfer.
	Create(ctx context.Context, transfer *Transfer) error

	// GetByID retrieves a transfer, or (nil, nil) when absent.
	GetByID(ctx context.Context, transferID id.ID) (*Transfer, error)

	// GetByIDForUpdate retrieves a transfer with a row lock, or
	// (nil, nil) when absent. Must be called inside a transaction;
	// serializes concurrent approve/cancel attempts.
	GetByIDForUpdate(ctx context.Context, transferID id.ID) (*Transfer, error)

	// Update persists status transitions (with optimistic locking).
	Update(ctx context.Context, transfer *Transfer) error

	// List retrieves transfers matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Transfer, error)
}

// ListFilter for filtering transfer queries.
type ListFilter struct {
	Status      *Status
	ProductID   *id.ID
	WarehouseID *id.ID // matches source or target
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}
