// Package transfers provides the inter-warehouse transfer workflow:
// a Pending -> Approved | Cancelled state machine moving a fixed
// quantity of one product between two warehouses.
package transfers

import (
	"context"
	"time"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/entity"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
)

// Status is the transfer lifecycle state.
type Status string

const (
	// StatusPending: created, source decremented, stock in transit
	StatusPending Status = "pending"
	// StatusApproved: terminal, target incremented with blended cost
	StatusApproved Status = "approved"
	// StatusCancelled: terminal, source restored
	StatusCancelled Status = "cancelled"
)

// Transfer moves a fixed quantity of one product from a source to a
// target warehouse. Quantity and identity fields never change after
// creation; only the status transitions, Pending -> Approved or
// Pending -> Cancelled, both terminal.
type Transfer struct {
	entity.BaseDocument

	// Number is the human-readable transfer number (TR-2026-00001)
	Number string `db:"number" json:"number"`

	SourceWarehouseID id.ID `db:"source_warehouse_id" json:"sourceWarehouseId"`
	TargetWarehouseID id.ID `db:"target_warehouse_id" json:"targetWarehouseId"`
	ProductID         id.ID `db:"product_id" json:"productId"`

	// Quantity is fixed at creation
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	Status Status `db:"status" json:"status"`

	// Set only on approval
	ApprovedBy *string    `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
}

// NewTransfer creates a pending transfer.
func NewTransfer(sourceWarehouseID, targetWarehouseID, productID id.ID, quantity types.Quantity) *Transfer {
	return &Transfer{
		BaseDocument:      entity.NewBaseDocument(),
		SourceWarehouseID: sourceWarehouseID,
		TargetWarehouseID: targetWarehouseID,
		ProductID:         productID,
		Quantity:          quantity,
		Status:            StatusPending,
	}
}

// Validate implements entity.Validatable.
func (t *Transfer) Validate(ctx context.Context) error {
	if id.IsNil(t.SourceWarehouseID) {
		return apperror.NewValidation("source warehouse is required").
			WithDetail("field", "sourceWarehouseId")
	}
	if id.IsNil(t.TargetWarehouseID) {
		return apperror.NewValidation("target warehouse is required").
			WithDetail("field", "targetWarehouseId")
	}
	if t.SourceWarehouseID == t.TargetWarehouseID {
		return apperror.NewValidation("source and target warehouses must differ").
			WithDetail("field", "targetWarehouseId")
	}
	if id.IsNil(t.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if !t.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	return nil
}

// IsPending reports whether the transfer can still be approved or cancelled.
func (t *Transfer) IsPending() bool {
	return t.Status == StatusPending
}

// MarkApproved transitions to the terminal Approved state.
func (t *Transfer) MarkApproved(actor string, at time.Time) {
	t.Status = StatusApproved
	t.ApprovedBy = &actor
	t.ApprovedAt = &at
	t.Touch()
}

// MarkCancelled transitions to the terminal Cancelled state.
func (t *Transfer) MarkCancelled() {
	t.Status = StatusCancelled
	t.Touch()
}
