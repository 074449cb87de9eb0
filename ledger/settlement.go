package ledger

import (
	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
)

// Settlement is the derived payment state of an order.
type Settlement struct {
	AmountPaid decimal.Decimal `json:"amountPaid"`
	Status     models.Status   `json:"status"`
}

// DeriveStatus maps an amount paid against a total to a status. Nothing paid is
// Pending, reaching the total exactly is Paid.
func DeriveStatus(amountPaid, total decimal.Decimal) models.Status {
	switch {
	case !amountPaid.IsPositive():
		return models.StatusPending
	case amountPaid.GreaterThanOrEqual(total):
		return models.StatusPaid
	default:
		return models.StatusPartial
	}
}

// RecomputeSettlement derives the order's settlement from its complete payment
// history. Payments for other orders are ignored, so callers may pass a wider set.
func RecomputeSettlement(order models.Order, payments []models.Payment) Settlement {
	paid := decimal.Zero
	for _, p := range payments {
		if p.OrderID != order.ID {
			continue
		}
		paid = paid.Add(p.Amount)
	}
	return Settlement{AmountPaid: paid, Status: DeriveStatus(paid, order.Total)}
}

// Apply overwrites the order's derived fields and reports whether they changed.
func (s Settlement) Apply(o *models.Order) bool {
	changed := !o.AmountPaid.Equal(s.AmountPaid) || o.Status != s.Status
	o.AmountPaid = s.AmountPaid
	o.Status = s.Status
	return changed
}
