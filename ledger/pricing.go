package ledger

import (
	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
)

// UnitPrice returns the product price for the tier. Unknown tiers charge retail.
func UnitPrice(p models.Product, pt models.PriceType) decimal.Decimal {
	if pt == models.PriceWholesale {
		return p.WholesalePrice
	}
	return p.RetailPrice
}

// ComputeLineValue returns quantity × the tier price of the product.
func ComputeLineValue(p models.Product, quantity int, pt models.PriceType) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return UnitPrice(p, pt).Mul(decimal.NewFromInt(int64(quantity)))
}

// ComputeOrderTotal sums price × quantity over items, ignoring items with quantity <= 0.
func ComputeOrderTotal(items []models.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		total = total.Add(it.Value())
	}
	return total
}

// PriceItems turns order form rows into stored line items, snapshotting the tier price.
// Rows whose product is unknown or whose quantity is not positive are left out; their
// indexes are returned in skipped.
func PriceItems(rows []models.LineItemInput, products map[string]models.Product) (items []models.LineItem, total decimal.Decimal, skipped []int) {
	items = make([]models.LineItem, 0, len(rows))
	for i, row := range rows {
		p, ok := products[row.ProductID]
		if !ok || row.Quantity <= 0 {
			skipped = append(skipped, i)
			continue
		}
		pt := row.PriceType
		if !pt.Valid() {
			pt = models.PriceRetail
		}
		items = append(items, models.LineItem{
			ProductID: p.ID,
			Quantity:  row.Quantity,
			PriceType: pt,
			Price:     UnitPrice(p, pt),
		})
	}
	return items, ComputeOrderTotal(items), skipped
}
