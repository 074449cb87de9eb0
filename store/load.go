package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/satheeshds/orderledger/ledger"
	"github.com/satheeshds/orderledger/models"
)

// decodeAll decodes every document, skipping the ones that do not parse or validate.
func decodeAll[T any](kind models.Kind, docs []Document, check func(T) string) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		v, err := Decode[T](d)
		if err != nil {
			slog.Warn("skipping malformed document", "kind", kind, "id", d.ID, "error", err)
			continue
		}
		if check != nil {
			if msg := check(v); msg != "" {
				slog.Warn("skipping invalid document", "kind", kind, "id", d.ID, "reason", msg)
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

func checkProduct(p models.Product) string {
	if p.RetailPrice.IsNegative() || p.WholesalePrice.IsNegative() {
		return "negative price"
	}
	return ""
}

func LoadProducts(ctx context.Context, s Store, account string) ([]models.Product, error) {
	docs, err := s.List(ctx, account, models.KindProducts)
	if err != nil {
		return nil, err
	}
	return decodeAll(models.KindProducts, docs, checkProduct), nil
}

func LoadCustomers(ctx context.Context, s Store, account string) ([]models.Customer, error) {
	docs, err := s.List(ctx, account, models.KindCustomers)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Customer](models.KindCustomers, docs, nil), nil
}

// LoadOrders returns the account's orders, normalized to the line-items shape.
func LoadOrders(ctx context.Context, s Store, account string, filters ...Filter) ([]models.Order, error) {
	docs, err := s.List(ctx, account, models.KindOrders, filters...)
	if err != nil {
		return nil, err
	}
	raws := decodeAll[ledger.RawOrder](models.KindOrders, docs, nil)
	orders := make([]models.Order, len(raws))
	for i, raw := range raws {
		if raw.Legacy() {
			slog.Debug("normalizing legacy order", "id", raw.ID)
		}
		orders[i] = ledger.Normalize(raw)
	}
	return orders, nil
}

// GetOrder loads and normalizes a single order.
func GetOrder(ctx context.Context, s Store, account, id string) (models.Order, error) {
	doc, err := s.Get(ctx, account, models.KindOrders, id)
	if err != nil {
		return models.Order{}, err
	}
	raw, err := Decode[ledger.RawOrder](doc)
	if err != nil {
		return models.Order{}, fmt.Errorf("decoding order: %w", err)
	}
	return ledger.Normalize(raw), nil
}

// LoadPayments returns payments matching filters, e.g. Where("orderId", id).
func LoadPayments(ctx context.Context, s Store, account string, filters ...Filter) ([]models.Payment, error) {
	docs, err := s.List(ctx, account, models.KindPayments, filters...)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Payment](models.KindPayments, docs, nil), nil
}

// LoadLedger reads every collection of the account.
func LoadLedger(ctx context.Context, s Store, account string) (ledger.Ledger, error) {
	var l ledger.Ledger
	var err error
	if l.Products, err = LoadProducts(ctx, s, account); err != nil {
		return l, err
	}
	if l.Customers, err = LoadCustomers(ctx, s, account); err != nil {
		return l, err
	}
	if l.Orders, err = LoadOrders(ctx, s, account); err != nil {
		return l, err
	}
	if l.Payments, err = LoadPayments(ctx, s, account); err != nil {
		return l, err
	}
	return l, nil
}

// AccountWriter inserts records of one account in per-call batches.
type AccountWriter struct {
	Store   Store
	Account string
}

// InsertBatch stores records in one batch and returns their ids in order.
func (w AccountWriter) InsertBatch(ctx context.Context, kind models.Kind, records []any) ([]string, error) {
	ids := make([]string, 0, len(records))
	err := w.Store.Batch(ctx, w.Account, func(b Batch) error {
		ids = ids[:0]
		for _, r := range records {
			id, err := b.Insert(kind, r)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("writing %d %s: %w", len(records), kind, err)
	}
	return ids, nil
}
