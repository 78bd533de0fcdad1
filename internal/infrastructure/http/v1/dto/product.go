package dto

import (
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code        string       `json:"code"`
	Name        string       `json:"name" binding:"required"`
	SKU         string       `json:"sku" binding:"required"`
	Barcode     *string      `json:"barcode"`
	SalePrice   *types.Money `json:"salePrice"`
	TaxRate     *types.Money `json:"taxRate"`
	Description *string      `json:"description"`
	IsActive    *bool        `json:"isActive"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name, r.SKU)
	p.Barcode = r.Barcode
	if r.SalePrice != nil {
		p.SalePrice = *r.SalePrice
	}
	if r.TaxRate != nil {
		p.TaxRate = *r.TaxRate
	}
	p.Description = r.Description
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code        string      `json:"code"`
	Name        string      `json:"name" binding:"required"`
	SKU         string      `json:"sku" binding:"required"`
	Barcode     *string     `json:"barcode,omitempty"`
	SalePrice   types.Money `json:"salePrice"`
	TaxRate     types.Money `json:"taxRate"`
	Description *string     `json:"description,omitempty"`
	IsActive    bool        `json:"isActive"`
	Version     int         `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	p.SalePrice = r.SalePrice
	p.TaxRate = r.TaxRate
	p.Description = r.Description
	p.IsActive = r.IsActive
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID           string      `json:"id"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	SKU          string      `json:"sku"`
	Barcode      *string     `json:"barcode,omitempty"`
	SalePrice    types.Money `json:"salePrice"`
	TaxRate      types.Money `json:"taxRate"`
	Description  *string     `json:"description,omitempty"`
	IsActive     bool        `json:"isActive"`
	DeletionMark bool        `json:"deletionMark"`
	Version      int         `json:"version"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		SKU:          p.SKU,
		Barcode:      p.Barcode,
		SalePrice:    p.SalePrice,
		TaxRate:      p.TaxRate,
		Description:  p.Description,
		IsActive:     p.IsActive,
		DeletionMark: p.DeletionMark,
		Version:      p.Version,
	}
}
