package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/satheeshds/orderledger/events"
	"github.com/satheeshds/orderledger/ledger"
	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/store"
	"github.com/shopspring/decimal"
)

// OrderView is an order with its references resolved for display.
type OrderView struct {
	models.Order
	CustomerName string          `json:"customerName"`
	Balance      decimal.Decimal `json:"balance"`
}

// OrderDetail adds the order's payments to the view.
type OrderDetail struct {
	OrderView
	Payments []models.Payment `json:"payments"`
}

// OrderResult is returned by order writes. SkippedRows lists input rows that were left
// out because their product was unknown or their quantity was not positive.
type OrderResult struct {
	Order       models.Order `json:"order"`
	SkippedRows []int        `json:"skippedRows,omitempty"`
}

// OrderFilter narrows ListOrders. Zero fields match everything.
type OrderFilter struct {
	CustomerID string
	Status     models.Status
	From, To   models.Date
}

func (f OrderFilter) match(o models.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && o.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && f.To.Before(o.Date) {
		return false
	}
	return true
}

func customerNames(customers []models.Customer) map[string]string {
	names := make(map[string]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	return names
}

func view(o models.Order, names map[string]string) OrderView {
	name, ok := names[o.CustomerID]
	if !ok {
		name = NotAvailable
	}
	return OrderView{Order: o, CustomerName: name, Balance: o.Balance()}
}

// ListOrders returns matching orders, newest first.
func (l *Ledger) ListOrders(ctx context.Context, account string, f OrderFilter) ([]OrderView, error) {
	var filters []store.Filter
	if f.CustomerID != "" {
		filters = append(filters, store.Where("customerId", f.CustomerID))
	}
	orders, err := store.LoadOrders(ctx, l.store, account, filters...)
	if err != nil {
		return nil, err
	}
	customers, err := l.ListCustomers(ctx, account)
	if err != nil {
		return nil, err
	}
	names := customerNames(customers)

	views := []OrderView{}
	for _, o := range orders {
		if f.match(o) {
			views = append(views, view(o, names))
		}
	}
	slices.SortStableFunc(views, func(a, b OrderView) int {
		return cmp.Compare(b.Date.String(), a.Date.String())
	})
	return views, nil
}

func (l *Ledger) GetOrder(ctx context.Context, account, id string) (OrderDetail, error) {
	o, err := store.GetOrder(ctx, l.store, account, id)
	if err != nil {
		return OrderDetail{}, err
	}
	payments, err := store.LoadPayments(ctx, l.store, account, store.Where("orderId", id))
	if err != nil {
		return OrderDetail{}, err
	}
	names := map[string]string{}
	if c, err := l.GetCustomer(ctx, account, o.CustomerID); err == nil {
		names[c.ID] = c.Name
	}
	return OrderDetail{OrderView: view(o, names), Payments: payments}, nil
}

// priceOrder validates the input and builds the order it describes.
func (l *Ledger) priceOrder(ctx context.Context, account string, in *models.OrderInput) (models.Order, []int, error) {
	if msg := in.Validate(); msg != "" {
		return models.Order{}, nil, invalid(msg)
	}
	if _, err := l.GetCustomer(ctx, account, in.CustomerID); err != nil {
		return models.Order{}, nil, invalid("customer not found")
	}
	products, err := l.ListProducts(ctx, account)
	if err != nil {
		return models.Order{}, nil, err
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items, total, skipped := ledger.PriceItems(in.Items, byID)
	if len(items) == 0 {
		return models.Order{}, skipped, invalid("order has no valid items")
	}
	return models.Order{
		CustomerID: in.CustomerID,
		Date:       in.Date,
		Items:      items,
		Total:      total,
		AmountPaid: decimal.Zero,
		Status:     models.StatusPending,
	}, skipped, nil
}

// CreateOrder prices and saves a new order. A positive InitialPayment is recorded
// in the same batch, dated on the order date.
func (l *Ledger) CreateOrder(ctx context.Context, account string, in models.OrderInput) (OrderResult, error) {
	order, skipped, err := l.priceOrder(ctx, account, &in)
	if err != nil {
		return OrderResult{SkippedRows: skipped}, err
	}

	err = l.store.Batch(ctx, account, func(b store.Batch) error {
		id, err := b.Insert(models.KindOrders, order)
		if err != nil {
			return err
		}
		order.ID = id
		if in.InitialPayment == nil || !in.InitialPayment.IsPositive() {
			return nil
		}
		_, err = b.Insert(models.KindPayments, models.Payment{
			OrderID:   id,
			Amount:    *in.InitialPayment,
			Date:      in.Date,
			Reference: in.Reference,
		})
		return err
	})
	if err != nil {
		return OrderResult{}, fmt.Errorf("saving order: %w", err)
	}
	slog.Info("order created", "account", account, "id", order.ID, "total", order.Total.StringFixed(2), "skipped_rows", len(skipped))
	l.publish(ctx, events.OrderEvent(events.OrderCreated, account, order))

	order, err = l.Recompute(ctx, account, order.ID)
	if err != nil {
		return OrderResult{}, err
	}
	return OrderResult{Order: order, SkippedRows: skipped}, nil
}

// ReplaceOrder re-prices an order from new input, keeping its id and payments.
func (l *Ledger) ReplaceOrder(ctx context.Context, account, id string, in models.OrderInput) (OrderResult, error) {
	current, err := store.GetOrder(ctx, l.store, account, id)
	if err != nil {
		return OrderResult{}, err
	}
	order, skipped, err := l.priceOrder(ctx, account, &in)
	if err != nil {
		return OrderResult{SkippedRows: skipped}, err
	}
	order.ID = id
	order.AmountPaid = current.AmountPaid
	order.Status = current.Status

	if err := l.store.Put(ctx, account, models.KindOrders, id, order); err != nil {
		return OrderResult{}, fmt.Errorf("saving order: %w", err)
	}
	order, err = l.Recompute(ctx, account, id)
	if err != nil {
		return OrderResult{}, err
	}
	return OrderResult{Order: order, SkippedRows: skipped}, nil
}

// DeleteOrder removes the order together with its payments.
func (l *Ledger) DeleteOrder(ctx context.Context, account, id string) error {
	order, err := store.GetOrder(ctx, l.store, account, id)
	if err != nil {
		return err
	}
	payments, err := store.LoadPayments(ctx, l.store, account, store.Where("orderId", id))
	if err != nil {
		return err
	}
	err = l.store.Batch(ctx, account, func(b store.Batch) error {
		for _, p := range payments {
			if err := b.Delete(models.KindPayments, p.ID); err != nil {
				return err
			}
		}
		return b.Delete(models.KindOrders, id)
	})
	if err != nil {
		return fmt.Errorf("deleting order %s: %w", id, err)
	}
	slog.Info("order deleted", "account", account, "id", id, "payments", len(payments))
	l.publish(ctx, events.OrderEvent(events.OrderDeleted, account, order))
	return nil
}
