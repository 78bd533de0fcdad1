package dto

import (
	"time"

	"stocktrack/internal/domain/transfers"
)

// --- Request DTOs ---

// CreateTransferRequest is the request body for initiating a transfer.
type CreateTransferRequest struct {
	SourceWarehouseID string `json:"sourceWarehouseId" binding:"required"`
	TargetWarehouseID string `json:"targetWarehouseId" binding:"required"`
	ProductID         string `json:"productId" binding:"required"`
	Quantity          int64  `json:"quantity" binding:"required"`
}

// --- Response DTOs ---

// TransferResponse is the response body for a transfer.
type TransferResponse struct {
	ID                string     `json:"id"`
	Number            string     `json:"number"`
	SourceWarehouseID string     `json:"sourceWarehouseId"`
	TargetWarehouseID string     `json:"targetWarehouseId"`
	ProductID         string     `json:"productId"`
	Quantity          int64      `json:"quantity"`
	Status            string     `json:"status"`
	ApprovedBy        *string    `json:"approvedBy,omitempty"`
	ApprovedAt        *time.Time `json:"approvedAt,omitempty"`
	CreatedBy         string     `json:"createdBy,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// FromTransfer creates response DTO from domain entity.
func FromTransfer(t *transfers.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:                t.ID.String(),
		Number:            t.Number,
		SourceWarehouseID: t.SourceWarehouseID.String(),
		TargetWarehouseID: t.TargetWarehouseID.String(),
		ProductID:         t.ProductID.String(),
		Quantity:          t.Quantity.Int64(),
		Status:            string(t.Status),
		ApprovedBy:        t.ApprovedBy,
		ApprovedAt:        t.ApprovedAt,
		CreatedBy:         t.CreatedBy,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// FromTransfers maps a transfer slice.
func FromTransfers(items []transfers.Transfer) []*TransferResponse {
	out := make([]*TransferResponse, len(items))
	for i := range items {
		out[i] = FromTransfer(&items[i])
	}
	return out
}
