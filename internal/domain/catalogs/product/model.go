// Package product provides the Product catalog.
// Products are the sellable and stockable items of the retail assortment.
package product

import (
	"context"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/entity"
	"stocktrack/internal/core/types"
)

// Product represents a sellable, stockable item.
type Product struct {
	entity.Catalog

	// SKU is the stock keeping unit identifier (unique)
	SKU string `db:"sku" json:"sku"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// SalePrice is the default retail price per unit
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// TaxRate is the default tax rate as a fraction (e.g. 0.20 for 20%)
	TaxRate types.Money `db:"tax_rate" json:"taxRate"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`

	// IsActive indicates if the product can be received and sold
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name, sku string) *Product {
	return &Product{
		Catalog:   entity.NewCatalog(code, name),
		SKU:       sku,
		SalePrice: types.ZeroMoney(),
		TaxRate:   types.ZeroMoney(),
		IsActive:  true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.SKU == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}

	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}

	if p.TaxRate.IsNegative() {
		return apperror.NewValidation("tax rate cannot be negative").
			WithDetail("field", "taxRate")
	}

	return nil
}
