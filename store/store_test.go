package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/satheeshds/orderledger/db"
	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	conn, driver, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn, driver))
	return NewSQLStore(conn, driver)
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
}

func TestInsertGetUpdateDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		id, err := s.Insert(ctx, "acct", models.KindCustomers, models.Customer{ID: "ignored", Name: "Ana"})
		require.NoError(t, err)
		require.NotEqual(t, "ignored", id)

		doc, err := s.Get(ctx, "acct", models.KindCustomers, id)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ana"}`, string(doc.Body))

		c, err := Decode[models.Customer](doc)
		require.NoError(t, err)
		assert.Equal(t, models.Customer{ID: id, Name: "Ana"}, c)

		require.NoError(t, s.Update(ctx, "acct", models.KindCustomers, id, map[string]any{"phone": "555"}))
		doc, err = s.Get(ctx, "acct", models.KindCustomers, id)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ana","phone":"555"}`, string(doc.Body))

		require.NoError(t, s.Delete(ctx, "acct", models.KindCustomers, id))
		_, err = s.Get(ctx, "acct", models.KindCustomers, id)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.ErrorIs(t, s.Delete(ctx, "acct", models.KindCustomers, id), ErrNotFound)
		assert.ErrorIs(t, s.Update(ctx, "acct", models.KindCustomers, id, map[string]any{"a": 1}), ErrNotFound)
	})
}

func TestAccountsAreIsolated(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.Insert(ctx, "a", models.KindProducts, map[string]any{"description": "Tea"})
		require.NoError(t, err)

		docs, err := s.List(ctx, "b", models.KindProducts)
		require.NoError(t, err)
		assert.Empty(t, docs)

		docs, err = s.List(ctx, "a", models.KindCustomers)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestListFiltersAndOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for i, order := range []string{"o1", "o2", "o1"} {
			_, err := s.Insert(ctx, "acct", models.KindPayments, models.Payment{
				OrderID: order,
				Amount:  decimal.NewFromInt(int64(i + 1)),
				Date:    models.MustParseDate("2024-03-06"),
			})
			require.NoError(t, err)
		}

		payments, err := LoadPayments(ctx, s, "acct", Where("orderId", "o1"))
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.Equal(t, "1", payments[0].Amount.String())
		assert.Equal(t, "3", payments[1].Amount.String())

		all, err := LoadPayments(ctx, s, "acct")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestBatchIsAllOrNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		keep, err := s.Insert(ctx, "acct", models.KindOrders, map[string]any{"total": "10"})
		require.NoError(t, err)

		boom := errors.New("boom")
		err = s.Batch(ctx, "acct", func(b Batch) error {
			if _, err := b.Insert(models.KindOrders, map[string]any{"total": "20"}); err != nil {
				return err
			}
			if err := b.Delete(models.KindOrders, keep); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		docs, err := s.List(ctx, "acct", models.KindOrders)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, keep, docs[0].ID)

		err = s.Batch(ctx, "acct", func(b Batch) error {
			if err := b.Put(models.KindProfitability, "2024-03", map[string]any{"p1": "12.5"}); err != nil {
				return err
			}
			return b.Delete(models.KindOrders, keep)
		})
		require.NoError(t, err)

		docs, err = s.List(ctx, "acct", models.KindOrders)
		require.NoError(t, err)
		assert.Empty(t, docs)
		doc, err := s.Get(ctx, "acct", models.KindProfitability, "2024-03")
		require.NoError(t, err)
		assert.JSONEq(t, `{"p1":"12.5"}`, string(doc.Body))
	})
}

func TestPutReplaces(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "acct", models.KindProfitability, "2024-03", map[string]any{"a": "1", "b": "2"}))
		require.NoError(t, s.Put(ctx, "acct", models.KindProfitability, "2024-03", map[string]any{"a": "3"}))

		docs, err := s.List(ctx, "acct", models.KindProfitability)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.JSONEq(t, `{"a":"3"}`, string(docs[0].Body))
	})
}

func TestLoadLedgerNormalizesAndSkipsMalformed(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.Insert(ctx, "acct", models.KindOrders, map[string]any{
			"customerId": "c1", "date": "2024-03-06", "productId": "p1", "quantity": 4, "total": 40,
			"amountPaid": 0, "status": "Pendiente",
		})
		require.NoError(t, err)
		_, err = s.Insert(ctx, "acct", models.KindOrders, map[string]any{"customerId": "c1", "date": "not a date"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, "acct", models.KindProducts, map[string]any{"description": "Bad", "retailPrice": "-1"})
		require.NoError(t, err)

		l, err := LoadLedger(ctx, s, "acct")
		require.NoError(t, err)
		assert.Empty(t, l.Products)
		require.Len(t, l.Orders, 1)
		o := l.Orders[0]
		require.Len(t, o.Items, 1)
		assert.Equal(t, "10", o.Items[0].Price.String())
		assert.Equal(t, models.PriceRetail, o.Items[0].PriceType)
		assert.Equal(t, models.StatusPending, o.Status)
	})
}

func TestAccountWriterInsertBatch(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		w := AccountWriter{Store: s, Account: "acct"}
		ids, err := w.InsertBatch(ctx, models.KindCustomers, []any{
			models.Customer{Name: "Ana"},
			models.Customer{Name: "Luis"},
		})
		require.NoError(t, err)
		require.Len(t, ids, 2)

		customers, err := LoadCustomers(ctx, s, "acct")
		require.NoError(t, err)
		require.Len(t, customers, 2)
		assert.Equal(t, ids[0], customers[0].ID)
		assert.Equal(t, "Luis", customers[1].Name)
	})
}

func TestRebind(t *testing.T) {
	pg := &SQLStore{postgres: true}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))
	lite := &SQLStore{}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
