// Package ledger provides the stock ledger: per-(product, warehouse)
// positions with weighted-average cost basis and the append-only
// movement log recording every quantity change.
package ledger

import (
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
)

// StockPosition is the current quantity and cost-basis record for one
// product in one warehouse. Exactly one live position exists per
// (productID, warehouseID) pair; it is created lazily on the first
// inbound movement and never deleted (quantity may fall to zero, not below).
type StockPosition struct {
	// Dimensions
	ProductID   id.ID `db:"product_id" json:"productId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// Quantity on hand, invariant: >= 0 at all times
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// AverageCost is the weighted-average unit cost of held stock
	AverageCost types.Money `db:"average_cost" json:"averageCost"`

	// LastPurchasePrice is the most recent inbound unit price
	// (informational, not used in calculations)
	LastPurchasePrice types.Money `db:"last_purchase_price" json:"lastPurchasePrice"`

	// Version for optimistic locking (secondary guard; writers also
	// take a row lock inside the transaction)
	Version int `db:"version" json:"version"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewStockPosition creates a zeroed position for a pair.
func NewStockPosition(productID, warehouseID id.ID) *StockPosition {
	return &StockPosition{
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Quantity:          0,
		AverageCost:       types.ZeroMoney(),
		LastPurchasePrice: types.ZeroMoney(),
		Version:           0,
	}
}

// CanDecrement reports whether removing qty units keeps the position
// non-negative.
func (p *StockPosition) CanDecrement(qty types.Quantity) bool {
	return p.Quantity >= qty
}

// ValuationTotal returns quantity x average cost for this position.
func (p *StockPosition) ValuationTotal() types.Money {
	return p.AverageCost.Mul(p.Quantity.Decimal())
}
