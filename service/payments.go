package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/snapshot"
	"github.com/satheeshds/orderledger/store"
	"github.com/shopspring/decimal"
)

// PaymentView is a payment with the order it settles described for display.
type PaymentView struct {
	models.Payment
	CustomerName   string `json:"customerName"`
	OrderReference string `json:"orderReference"`
}

// PaymentResult is returned by payment writes. Overpayment is how much the order's
// payments now exceed its total; it is accepted but reported.
type PaymentResult struct {
	Payment     models.Payment  `json:"payment"`
	Order       models.Order    `json:"order"`
	Overpayment decimal.Decimal `json:"overpayment"`
}

// ListPayments returns payments, newest first, optionally for one order.
func (l *Ledger) ListPayments(ctx context.Context, account, orderID string) ([]PaymentView, error) {
	var filters []store.Filter
	if orderID != "" {
		filters = append(filters, store.Where("orderId", orderID))
	}
	payments, err := store.LoadPayments(ctx, l.store, account, filters...)
	if err != nil {
		return nil, err
	}
	orders, err := store.LoadOrders(ctx, l.store, account)
	if err != nil {
		return nil, err
	}
	customers, err := l.ListCustomers(ctx, account)
	if err != nil {
		return nil, err
	}
	names := customerNames(customers)
	byID := make(map[string]models.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}

	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		v := PaymentView{Payment: p, CustomerName: NotAvailable, OrderReference: NotAvailable}
		if o, ok := byID[p.OrderID]; ok {
			v.OrderReference = snapshot.OrderReference(o.Date, o.Total)
			if name, ok := names[o.CustomerID]; ok {
				v.CustomerName = name
			}
		}
		views = append(views, v)
	}
	slices.SortStableFunc(views, func(a, b PaymentView) int {
		return cmp.Compare(b.Date.String(), a.Date.String())
	})
	return views, nil
}

func (l *Ledger) GetPayment(ctx context.Context, account, id string) (models.Payment, error) {
	doc, err := l.store.Get(ctx, account, models.KindPayments, id)
	if err != nil {
		return models.Payment{}, err
	}
	return store.Decode[models.Payment](doc)
}

func (l *Ledger) settled(ctx context.Context, account string, p models.Payment) (PaymentResult, error) {
	order, err := l.Recompute(ctx, account, p.OrderID)
	if err != nil {
		return PaymentResult{}, err
	}
	res := PaymentResult{Payment: p, Order: order, Overpayment: decimal.Zero}
	if over := order.AmountPaid.Sub(order.Total); over.IsPositive() {
		res.Overpayment = over
		slog.Warn("order overpaid", "account", account, "order", order.ID, "overpayment", over.StringFixed(2))
	}
	return res, nil
}

func (l *Ledger) checkOrder(ctx context.Context, account, orderID string) error {
	if _, err := l.store.Get(ctx, account, models.KindOrders, orderID); err != nil {
		return invalid("order not found")
	}
	return nil
}

// RecordPayment saves a payment and recomputes the order it pays.
func (l *Ledger) RecordPayment(ctx context.Context, account string, in models.PaymentInput) (PaymentResult, error) {
	if msg := in.Validate(); msg != "" {
		return PaymentResult{}, invalid(msg)
	}
	if err := l.checkOrder(ctx, account, in.OrderID); err != nil {
		return PaymentResult{}, err
	}

	p := in.Payment("")
	var err error
	if p.ID, err = l.store.Insert(ctx, account, models.KindPayments, p); err != nil {
		return PaymentResult{}, fmt.Errorf("saving payment: %w", err)
	}
	slog.Info("payment recorded", "account", account, "id", p.ID, "order", p.OrderID, "amount", p.Amount.StringFixed(2))
	return l.settled(ctx, account, p)
}

// UpdatePayment corrects a payment. Moving it to another order recomputes both orders.
func (l *Ledger) UpdatePayment(ctx context.Context, account, id string, in models.PaymentInput) (PaymentResult, error) {
	if msg := in.Validate(); msg != "" {
		return PaymentResult{}, invalid(msg)
	}
	current, err := l.GetPayment(ctx, account, id)
	if err != nil {
		return PaymentResult{}, err
	}
	if err := l.checkOrder(ctx, account, in.OrderID); err != nil {
		return PaymentResult{}, err
	}

	p := in.Payment(id)
	if err := l.store.Put(ctx, account, models.KindPayments, id, p); err != nil {
		return PaymentResult{}, fmt.Errorf("saving payment: %w", err)
	}
	if current.OrderID != p.OrderID {
		if _, err := l.Recompute(ctx, account, current.OrderID); err != nil && !isNotFound(err) {
			return PaymentResult{}, err
		}
	}
	return l.settled(ctx, account, p)
}

// DeletePayment removes a payment and recomputes its order, if the order still exists.
func (l *Ledger) DeletePayment(ctx context.Context, account, id string) (models.Order, error) {
	p, err := l.GetPayment(ctx, account, id)
	if err != nil {
		return models.Order{}, err
	}
	if err := l.store.Delete(ctx, account, models.KindPayments, id); err != nil {
		return models.Order{}, err
	}
	order, err := l.Recompute(ctx, account, p.OrderID)
	if isNotFound(err) {
		return models.Order{}, nil
	}
	return order, err
}
