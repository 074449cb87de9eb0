package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/satheeshds/orderledger/events"
	"github.com/satheeshds/orderledger/ledger"
	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/store"
)

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func settlementPatch(o models.Order) map[string]any {
	return map[string]any{"amountPaid": o.AmountPaid, "status": o.Status}
}

// Recompute reads the order and all of its payments and stores the settlement they
// imply. Stored values that disagree are overwritten.
func (l *Ledger) Recompute(ctx context.Context, account, orderID string) (models.Order, error) {
	order, err := store.GetOrder(ctx, l.store, account, orderID)
	if err != nil {
		return models.Order{}, err
	}
	payments, err := store.LoadPayments(ctx, l.store, account, store.Where("orderId", orderID))
	if err != nil {
		return models.Order{}, err
	}

	prev := order.Status
	if !ledger.RecomputeSettlement(order, payments).Apply(&order) {
		return order, nil
	}
	if err := l.store.Update(ctx, account, models.KindOrders, orderID, settlementPatch(order)); err != nil {
		return models.Order{}, fmt.Errorf("updating settlement of %s: %w", orderID, err)
	}
	slog.Debug("order settlement updated", "account", account, "order", orderID,
		"from", prev, "to", order.Status, "amount_paid", order.AmountPaid.StringFixed(2))
	l.publish(ctx, events.OrderEvent(events.OrderSettled, account, order))
	return order, nil
}

// ReconcileAll recomputes every order of the account and repairs the ones whose stored
// settlement drifted from their payments. It returns the repaired order ids.
func (l *Ledger) ReconcileAll(ctx context.Context, account string) ([]string, error) {
	snap, err := store.LoadLedger(ctx, l.store, account)
	if err != nil {
		return nil, err
	}
	drifted := snap.Reconcile()
	if len(drifted) == 0 {
		return []string{}, nil
	}

	byID := snap.OrdersByID()
	err = l.store.Batch(ctx, account, func(b store.Batch) error {
		for _, id := range drifted {
			if err := b.Update(models.KindOrders, id, settlementPatch(byID[id])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("repairing settlements: %w", err)
	}
	slog.Info("settlements reconciled", "account", account, "repaired", len(drifted))
	for _, id := range drifted {
		l.publish(ctx, events.OrderEvent(events.OrderSettled, account, byID[id]))
	}
	return drifted, nil
}

// Load returns the account's whole ledger.
func (l *Ledger) Load(ctx context.Context, account string) (ledger.Ledger, error) {
	return store.LoadLedger(ctx, l.store, account)
}
