package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/satheeshds/orderledger/events"
	"github.com/satheeshds/orderledger/importer"
	"github.com/satheeshds/orderledger/snapshot"
	"github.com/satheeshds/orderledger/store"
)

// Export returns the account's ledger as a snapshot.
func (l *Ledger) Export(ctx context.Context, account string) (snapshot.Snapshot, error) {
	current, err := store.LoadLedger(ctx, l.store, account)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	return snapshot.ExportLedger(current), nil
}

// Import adds the snapshot's missing records to the account and then recomputes every
// order that received payments, reading each back from the store.
func (l *Ledger) Import(ctx context.Context, account string, s snapshot.Snapshot) (importer.Result, error) {
	current, err := store.LoadLedger(ctx, l.store, account)
	if err != nil {
		return importer.Result{}, err
	}

	w := store.AccountWriter{Store: l.store, Account: account}
	res, err := importer.ImportSnapshot(ctx, snapshot.ParseSnapshot(s), current, w)
	if err != nil {
		slog.Error("snapshot import stopped", "account", account, "error", err,
			"products", res.Created.Products, "customers", res.Created.Customers, "orders", res.Created.Orders)
		return res, err
	}

	for _, id := range res.Recompute {
		if _, err := l.Recompute(ctx, account, id); err != nil {
			return res, err
		}
	}
	slog.Info("snapshot imported", "account", account,
		"products", res.Created.Products, "customers", res.Created.Customers,
		"orders", res.Created.Orders, "payments", res.Created.Payments, "issues", len(res.Issues))
	l.publish(ctx, events.Event{Type: events.SnapshotImported, Account: account, Data: res, Timestamp: time.Now().UTC()})
	return res, nil
}
