package dto

import (
	"time"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/ledger"
)

// --- Request DTOs ---

// ApplyMovementRequest is the request body for a single-warehouse stock
// adjustment.
type ApplyMovementRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	WarehouseID string `json:"warehouseId" binding:"required"`

	// ProcessType: receiving, return or shrinkage
	ProcessType string `json:"processType" binding:"required"`

	// Quantity in whole units, must be positive
	Quantity int64 `json:"quantity" binding:"required"`

	// UnitPrice and TaxRate apply to receiving only
	UnitPrice *types.Money `json:"unitPrice"`
	TaxRate   *types.Money `json:"taxRate"`
}

// ToAdjustment maps the request to the matching adjustment kind.
func (r *ApplyMovementRequest) ToAdjustment() (ledger.Adjustment, error) {
	qty := types.NewQuantity(r.Quantity)

	switch ledger.ProcessType(r.ProcessType) {
	case ledger.ProcessReceiving:
		return ledger.Receiving{Qty: qty, UnitPrice: r.UnitPrice, TaxRate: r.TaxRate}, nil
	case ledger.ProcessReturn:
		return ledger.Return{Qty: qty}, nil
	case ledger.ProcessShrinkage:
		return ledger.Shrinkage{Qty: qty}, nil
	default:
		return nil, apperror.NewInvalidProcessType(r.ProcessType)
	}
}

// --- Response DTOs ---

// PositionResponse is the response body for a stock position.
type PositionResponse struct {
	ProductID         string      `json:"productId"`
	WarehouseID       string      `json:"warehouseId"`
	Quantity          int64       `json:"quantity"`
	AverageCost       types.Money `json:"averageCost"`
	LastPurchasePrice types.Money `json:"lastPurchasePrice"`
	Version           int         `json:"version"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// FromPosition creates response DTO from a stock position.
func FromPosition(p *ledger.StockPosition) *PositionResponse {
	return &PositionResponse{
		ProductID:         p.ProductID.String(),
		WarehouseID:       p.WarehouseID.String(),
		Quantity:          p.Quantity.Int64(),
		AverageCost:       p.AverageCost,
		LastPurchasePrice: p.LastPurchasePrice,
		Version:           p.Version,
		UpdatedAt:         p.UpdatedAt,
	}
}

// FromPositions maps a position slice.
func FromPositions(positions []ledger.StockPosition) []*PositionResponse {
	out := make([]*PositionResponse, len(positions))
	for i := range positions {
		out[i] = FromPosition(&positions[i])
	}
	return out
}

// LogEntryResponse is the response body for a movement log entry.
type LogEntryResponse struct {
	ID           string       `json:"id"`
	ProductID    string       `json:"productId"`
	WarehouseID  string       `json:"warehouseId"`
	ChangeAmount int64        `json:"changeAmount"`
	ProcessType  string       `json:"processType"`
	UnitPrice    *types.Money `json:"unitPrice,omitempty"`
	TaxRate      *types.Money `json:"taxRate,omitempty"`
	TransferID   *string      `json:"transferId,omitempty"`
	CreatedBy    string       `json:"createdBy,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// FromLogEntry creates response DTO from a log entry.
func FromLogEntry(e ledger.LogEntry) LogEntryResponse {
	resp := LogEntryResponse{
		ID:           e.ID.String(),
		ProductID:    e.ProductID.String(),
		WarehouseID:  e.WarehouseID.String(),
		ChangeAmount: e.ChangeAmount.Int64(),
		ProcessType:  string(e.ProcessType),
		UnitPrice:    e.UnitPrice,
		TaxRate:      e.TaxRate,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
	}
	if e.TransferID != nil {
		s := e.TransferID.String()
		resp.TransferID = &s
	}
	return resp
}

// FromLogEntries maps a log entry slice.
func FromLogEntries(entries []ledger.LogEntry) []LogEntryResponse {
	out := make([]LogEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = FromLogEntry(e)
	}
	return out
}

// ValuationRowResponse is one line of the valuation report.
type ValuationRowResponse struct {
	ProductID   string      `json:"productId"`
	WarehouseID string      `json:"warehouseId"`
	Quantity    int64       `json:"quantity"`
	AverageCost types.Money `json:"averageCost"`
	Total       types.Money `json:"total"`
}

// FromValuationRows maps valuation rows.
func FromValuationRows(rows []ledger.ValuationRow) []ValuationRowResponse {
	out := make([]ValuationRowResponse, len(rows))
	for i, r := range rows {
		out[i] = ValuationRowResponse{
			ProductID:   r.ProductID.String(),
			WarehouseID: r.WarehouseID.String(),
			Quantity:    r.Quantity.Int64(),
			AverageCost: r.AverageCost,
			Total:       r.Total,
		}
	}
	return out
}

// AvailabilityResponse is the cross-warehouse availability for a product.
type AvailabilityResponse struct {
	ProductID string `json:"productId"`
	Available int64  `json:"available"`
}
