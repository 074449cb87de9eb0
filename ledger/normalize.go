package ledger

import (
	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
)

// RawOrder is an order document as stored, in either the current shape or the legacy
// single-product shape ({productId, quantity, total} with no items).
type RawOrder struct {
	ID         string             `json:"id"`
	CustomerID string             `json:"customerId"`
	Date       models.Date        `json:"date"`
	Items      *[]models.LineItem `json:"items"`
	ProductID  string             `json:"productId,omitempty"`
	Quantity   int                `json:"quantity,omitempty"`
	Total      decimal.Decimal    `json:"total"`
	AmountPaid decimal.Decimal    `json:"amountPaid"`
	Status     models.Status      `json:"status"`
}

// Legacy reports whether the document uses the single-product shape.
func (r RawOrder) Legacy() bool {
	return r.Items == nil && r.ProductID != ""
}

// Normalize returns the order in the line-items shape. Documents that already carry
// items are returned unchanged; legacy documents get one retail item priced at
// total/quantity while the stored total is kept as is.
func Normalize(raw RawOrder) models.Order {
	o := models.Order{
		ID:         raw.ID,
		CustomerID: raw.CustomerID,
		Date:       raw.Date,
		Total:      raw.Total,
		AmountPaid: raw.AmountPaid,
		Status:     raw.Status,
	}

	switch {
	case raw.Items != nil:
		o.Items = *raw.Items
	case raw.ProductID != "":
		qty := raw.Quantity
		if qty <= 0 {
			qty = 1
		}
		o.Items = []models.LineItem{{
			ProductID: raw.ProductID,
			Quantity:  qty,
			PriceType: models.PriceRetail,
			Price:     raw.Total.Div(decimal.NewFromInt(int64(qty))),
		}}
	}
	if o.Items == nil {
		o.Items = []models.LineItem{}
	}

	if !o.Status.Valid() {
		o.Status = DeriveStatus(o.AmountPaid, o.Total)
	}
	return o
}
