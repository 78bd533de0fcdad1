package ledger

import (
	"time"

	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
)

// ProcessType classifies a movement log entry.
type ProcessType string

const (
	ProcessReceiving         ProcessType = "receiving"
	ProcessReturn            ProcessType = "return"
	ProcessShrinkage         ProcessType = "shrinkage"
	ProcessTransferOut       ProcessType = "transfer_out"
	ProcessTransferIn        ProcessType = "transfer_in"
	ProcessTransferCancelled ProcessType = "transfer_cancelled"
)

// LogEntry is one immutable record in the movement log. Entries are
// append-only: never updated or deleted once written. The log is the
// source of truth for audit; the sum of ChangeAmount values for a pair
// always equals the position's current quantity.
type LogEntry struct {
	// ID is the entry identifier (UUIDv7, time-ordered)
	ID id.ID `db:"id" json:"id"`

	// Dimensions
	ProductID   id.ID `db:"product_id" json:"productId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// ChangeAmount is signed: positive = increase, negative = decrease
	ChangeAmount types.Quantity `db:"change_amount" json:"changeAmount"`

	// ProcessType classifies the movement
	ProcessType ProcessType `db:"process_type" json:"processType"`

	// UnitPrice is the inbound unit price (receiving and transfer-in only)
	UnitPrice *types.Money `db:"unit_price" json:"unitPrice,omitempty"`

	// TaxRate is the inbound tax rate (receiving only)
	TaxRate *types.Money `db:"tax_rate" json:"taxRate,omitempty"`

	// TransferID links transfer-driven entries to their transfer
	TransferID *id.ID `db:"transfer_id" json:"transferId,omitempty"`

	// CreatedBy is the actor who triggered the movement
	CreatedBy string `db:"created_by" json:"createdBy"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewLogEntry creates a movement log entry with generated ID and timestamp.
func NewLogEntry(productID, warehouseID id.ID, change types.Quantity, pt ProcessType, actor string) LogEntry {
	return LogEntry{
		ID:           id.New(),
		ProductID:    productID,
		WarehouseID:  warehouseID,
		ChangeAmount: change,
		ProcessType:  pt,
		CreatedBy:    actor,
		CreatedAt:    time.Now().UTC(),
	}
}

// --- Movement classification ---

// Adjustment is the closed set of single-warehouse stock adjustments.
// Each variant carries exactly the fields its process kind needs; the
// service resolves them with an exhaustive type switch.
type Adjustment interface {
	// Quantity returns the (positive) number of units the adjustment moves.
	Quantity() types.Quantity

	adjustment()
}

// Receiving is an inbound delivery. When UnitPrice is set, the position's
// average cost is re-blended and LastPurchasePrice updated.
type Receiving struct {
	Qty       types.Quantity
	UnitPrice *types.Money
	TaxRate   *types.Money
}

// Return is a customer return added back at the current average cost.
type Return struct {
	Qty types.Quantity
}

// Shrinkage is unrecoverable loss (damage, theft, spoilage) with no
// cost effect.
type Shrinkage struct {
	Qty types.Quantity
}

func (r Receiving) Quantity() types.Quantity { return r.Qty }
func (r Return) Quantity() types.Quantity    { return r.Qty }
func (s Shrinkage) Quantity() types.Quantity { return s.Qty }

func (Receiving) adjustment() {}
func (Return) adjustment()    {}
func (Shrinkage) adjustment() {}
