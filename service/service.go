// Package service implements the ledger operations a client performs: catalog and
// customer maintenance, order entry, payment recording, backups and restores. Every
// change to an order or its payments ends with a settlement recompute from a fresh
// read of the store.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/satheeshds/orderledger/events"
	"github.com/satheeshds/orderledger/store"
)

var (
	ErrNotFound = store.ErrNotFound
	ErrConflict = errors.New("already exists")
	ErrInUse    = errors.New("still referenced")
)

// NotAvailable is shown in listings for references that no longer resolve.
const NotAvailable = "N/A"

// ValidationError reports input that cannot be saved.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// Ledger is the application service for all accounts kept in one store.
type Ledger struct {
	store  store.Store
	events events.Publisher
}

// New returns a service over s. A nil publisher disables events.
func New(s store.Store, p events.Publisher) *Ledger {
	if p == nil {
		p = events.Nop{}
	}
	return &Ledger{store: s, events: p}
}

func (l *Ledger) publish(ctx context.Context, e events.Event) {
	if err := l.events.Publish(ctx, e); err != nil {
		slog.Warn("failed to publish event", "type", e.Type, "account", e.Account, "error", err)
	}
}
