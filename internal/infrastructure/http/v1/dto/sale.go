package dto

import (
	"time"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/sales"
)

// --- Request DTOs ---

// SaleLineRequest is one requested line of a sale.
type SaleLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`

	// UnitPrice overrides the catalog sale price when set
	UnitPrice *types.Money `json:"unitPrice"`
}

// CreateSaleRequest is the request body for consuming a sale.
type CreateSaleRequest struct {
	WarehouseID string            `json:"warehouseId" binding:"required"`
	Lines       []SaleLineRequest `json:"lines" binding:"required"`
}

// ToLineRequests converts DTO lines to domain line requests.
func (r *CreateSaleRequest) ToLineRequests() ([]sales.LineRequest, error) {
	lines := make([]sales.LineRequest, 0, len(r.Lines))
	for i, line := range r.Lines {
		productID, err := id.Parse(line.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid productId format").
				WithDetail("lineNo", i+1)
		}
		lines = append(lines, sales.LineRequest{
			ProductID:         productID,
			Quantity:          types.NewQuantity(line.Quantity),
			UnitPriceOverride: line.UnitPrice,
		})
	}
	return lines, nil
}

// --- Response DTOs ---

// SaleLineResponse is one consumed line.
type SaleLineResponse struct {
	LineID    string      `json:"lineId"`
	LineNo    int         `json:"lineNo"`
	ProductID string      `json:"productId"`
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	UnitCost  types.Money `json:"unitCost"`
	Amount    types.Money `json:"amount"`
}

// SaleResponse is the response body for a sale.
type SaleResponse struct {
	ID          string             `json:"id"`
	Number      string             `json:"number"`
	WarehouseID string             `json:"warehouseId"`
	TotalAmount types.Money        `json:"totalAmount"`
	Lines       []SaleLineResponse `json:"lines,omitempty"`
	CreatedBy   string             `json:"createdBy,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// FromSale creates response DTO from domain entity.
func FromSale(s *sales.Sale) *SaleResponse {
	resp := &SaleResponse{
		ID:          s.ID.String(),
		Number:      s.Number,
		WarehouseID: s.WarehouseID.String(),
		TotalAmount: s.TotalAmount,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
	}
	for _, line := range s.Lines {
		resp.Lines = append(resp.Lines, SaleLineResponse{
			LineID:    line.LineID.String(),
			LineNo:    line.LineNo,
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity.Int64(),
			UnitPrice: line.UnitPrice,
			UnitCost:  line.UnitCost,
			Amount:    line.Amount,
		})
	}
	return resp
}

// FromSales maps a sale slice (headers only).
func FromSales(items []sales.Sale) []*SaleResponse {
	out := make([]*SaleResponse, len(items))
	for i := range items {
		out[i] = FromSale(&items[i])
	}
	return out
}
