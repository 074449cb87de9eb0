package ledger

import (
	"github.com/samber/lo"
	"github.com/satheeshds/orderledger/models"
)

// Ledger is one account's products, customers, orders and payments as loaded at a
// point in time. It is a value passed into and out of the core; callers own refreshing it.
type Ledger struct {
	Products  []models.Product
	Customers []models.Customer
	Orders    []models.Order
	Payments  []models.Payment
}

// Clone returns a copy whose slices can be appended to and modified independently.
func (l Ledger) Clone() Ledger {
	orders := make([]models.Order, len(l.Orders))
	for i, o := range l.Orders {
		o.Items = append([]models.LineItem(nil), o.Items...)
		orders[i] = o
	}
	return Ledger{
		Products:  append([]models.Product(nil), l.Products...),
		Customers: append([]models.Customer(nil), l.Customers...),
		Orders:    orders,
		Payments:  append([]models.Payment(nil), l.Payments...),
	}
}

func (l Ledger) ProductsByID() map[string]models.Product {
	return lo.KeyBy(l.Products, func(p models.Product) string { return p.ID })
}

func (l Ledger) CustomersByID() map[string]models.Customer {
	return lo.KeyBy(l.Customers, func(c models.Customer) string { return c.ID })
}

func (l Ledger) OrdersByID() map[string]models.Order {
	return lo.KeyBy(l.Orders, func(o models.Order) string { return o.ID })
}

// PaymentsFor returns the payments recorded against orderID.
func (l Ledger) PaymentsFor(orderID string) []models.Payment {
	return lo.Filter(l.Payments, func(p models.Payment, _ int) bool { return p.OrderID == orderID })
}

// Reconcile recomputes the settlement of every order from the ledger's payments and
// returns the ids of orders whose stored values drifted.
func (l *Ledger) Reconcile() []string {
	byOrder := lo.GroupBy(l.Payments, func(p models.Payment) string { return p.OrderID })
	var drifted []string
	for i := range l.Orders {
		o := &l.Orders[i]
		if RecomputeSettlement(*o, byOrder[o.ID]).Apply(o) {
			drifted = append(drifted, o.ID)
		}
	}
	return drifted
}
