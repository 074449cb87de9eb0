package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product represents a catalog item sold at a retail or wholesale price.
type Product struct {
	ID             string          `json:"id"`
	Description    string          `json:"description"`
	RetailPrice    decimal.Decimal `json:"retailPrice"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
}

// ProductInput is used for creating/updating products.
type ProductInput struct {
	Description    string          `json:"description"`
	RetailPrice    decimal.Decimal `json:"retailPrice"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
}

func (p *ProductInput) Validate() string {
	p.Description = strings.TrimSpace(p.Description)
	if p.Description == "" {
		return "description is required"
	}
	if p.RetailPrice.IsNegative() || p.WholesalePrice.IsNegative() {
		return "prices must be non-negative"
	}
	return ""
}

// Product returns the product described by the input.
func (p ProductInput) Product(id string) Product {
	return Product{ID: id, Description: p.Description, RetailPrice: p.RetailPrice, WholesalePrice: p.WholesalePrice}
}

// NameKey is the case-insensitive natural key used to match products and customers.
func NameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
