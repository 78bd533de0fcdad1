package sales

import (
	"context"
	"time"

	"stocktrack/internal/core/id"
)

// Repository defines the interface for Sale persistence.
type Repository interface {
	// Create inserts the sale header.
	Create(ctx context.Context, sale *Sale) error

	// SaveLines replaces the sale's lines.
	SaveLines(ctx context.Context, saleID id.ID, lines []SaleLine) error

	// GetByID retrieves the sale header.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetLines retrieves the sale's lines ordered by line number.
	GetLines(ctx context.Context, saleID id.ID) ([]SaleLine, error)

	// List retrieves sales matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]Sale, error)
}

// ListFilter for filtering sale queries.
type ListFilter struct {
	WarehouseID *id.ID
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}
