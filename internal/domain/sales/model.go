// Package sales provides sale consumption: validating and atomically
// decrementing stock across the line items of a single sale, with a
// unit-cost snapshot per line for profit reporting.
package sales

import (
	"context"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/entity"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
)

// Sale is the consumption document. It is the audit trail for sale
// consumption; sales do not write movement log entries.
type Sale struct {
	entity.BaseDocument

	// Number is the human-readable sale number (SO-2026-00001)
	Number string `db:"number" json:"number"`

	// WarehouseID is the warehouse all lines consume from
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// TotalAmount = sum of quantity x effective unit price
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	// Lines is the table part
	Lines []SaleLine `db:"-" json:"lines"`
}

// SaleLine is one consumed line item.
type SaleLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`

	// UnitPrice is the effective sale price (override or catalog price)
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// UnitCost is the average cost snapshot taken at the moment of sale.
	// Never recomputed, even if the average cost changes later.
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	// Amount = Quantity x UnitPrice
	Amount types.Money `db:"amount" json:"amount"`
}

// NewSale creates a new sale document for a warehouse.
func NewSale(warehouseID id.ID) *Sale {
	return &Sale{
		BaseDocument: entity.NewBaseDocument(),
		WarehouseID:  warehouseID,
		TotalAmount:  types.ZeroMoney(),
		Lines:        make([]SaleLine, 0),
	}
}

// AddLine appends a consumed line and recalculates the total.
func (s *Sale) AddLine(productID id.ID, quantity types.Quantity, unitPrice, unitCost types.Money) {
	line := SaleLine{
		LineID:    id.New(),
		LineNo:    len(s.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		UnitCost:  unitCost,
		Amount:    unitPrice.Mul(quantity.Decimal()),
	}

	s.Lines = append(s.Lines, line)
	s.recalculateTotal()
}

func (s *Sale) recalculateTotal() {
	total := types.ZeroMoney()
	for _, line := range s.Lines {
		total = total.Add(line.Amount)
	}
	s.TotalAmount = total
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if id.IsNil(s.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range s.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
