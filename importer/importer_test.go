package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/satheeshds/orderledger/ledger"
	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/snapshot"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var march6 = models.MustParseDate("2024-03-06")

// recordingWriter hands out sequential ids and remembers each batch.
type recordingWriter struct {
	batches []models.Kind
	next    int
	failOn  models.Kind
}

func (w *recordingWriter) InsertBatch(_ context.Context, kind models.Kind, records []any) ([]string, error) {
	if kind == w.failOn {
		return nil, errors.New("store unavailable")
	}
	w.batches = append(w.batches, kind)
	ids := make([]string, len(records))
	for i := range records {
		w.next++
		ids[i] = fmt.Sprintf("%s-%d", kind, w.next)
	}
	return ids, nil
}

func sampleLedger() ledger.Ledger {
	return ledger.Ledger{
		Products: []models.Product{
			{ID: "pa", Description: "Product A", RetailPrice: dec("10.00"), WholesalePrice: dec("8.00")},
			{ID: "pb", Description: "Product B", RetailPrice: dec("6.50"), WholesalePrice: dec("5.00")},
		},
		Customers: []models.Customer{{ID: "c1", Name: "Ana"}},
		Orders: []models.Order{{
			ID: "o1", CustomerID: "c1", Date: march6,
			Items: []models.LineItem{
				{ProductID: "pa", Quantity: 2, PriceType: models.PriceRetail, Price: dec("10.00")},
				{ProductID: "pb", Quantity: 3, PriceType: models.PriceWholesale, Price: dec("5.00")},
			},
			Total: dec("35.00"), AmountPaid: dec("20.00"), Status: models.StatusPartial,
		}},
		Payments: []models.Payment{{ID: "y1", OrderID: "o1", Amount: dec("20.00"), Date: march6}},
	}
}

func TestImportIntoEmptyLedgerAndAgain(t *testing.T) {
	src := sampleLedger()
	drafts := snapshot.ParseSnapshot(snapshot.ExportLedger(src))

	w := &recordingWriter{}
	res, err := ImportSnapshot(context.Background(), drafts, ledger.Ledger{}, w)
	require.NoError(t, err)
	assert.Equal(t, Counts{Products: 2, Customers: 1, Orders: 1, Payments: 1}, res.Created)
	assert.Empty(t, res.Issues)
	assert.Equal(t, []models.Kind{models.KindProducts, models.KindCustomers, models.KindOrders, models.KindPayments}, w.batches)

	require.Len(t, res.Ledger.Orders, 1)
	o := res.Ledger.Orders[0]
	assert.Equal(t, res.Ledger.Customers[0].ID, o.CustomerID)
	assert.Equal(t, res.Ledger.Products[0].ID, o.Items[0].ProductID)
	assert.Equal(t, "35.00", o.Total.StringFixed(2))
	assert.Equal(t, models.StatusPartial, o.Status)
	assert.Equal(t, "20", o.AmountPaid.String())
	assert.Equal(t, []string{o.ID}, res.Recompute)
	assert.Equal(t, o.ID, res.Ledger.Payments[0].OrderID)

	again, err := ImportSnapshot(context.Background(), drafts, res.Ledger, w)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, again.Created)
	assert.Equal(t, Counts{Products: 2, Customers: 1, Orders: 1, Payments: 1}, again.Skipped)
	assert.Empty(t, again.Issues)
	assert.Empty(t, again.Recompute)
}

func TestImportMatchesNamesIgnoringCase(t *testing.T) {
	current := ledger.Ledger{
		Products:  []models.Product{{ID: "pa", Description: "Product A", RetailPrice: dec("10")}},
		Customers: []models.Customer{{ID: "c1", Name: "ana"}},
	}
	drafts := snapshot.Drafts{
		Products:  []snapshot.ProductRow{{Description: "  PRODUCT a ", RetailPrice: dec("10")}},
		Customers: []snapshot.CustomerRow{{Name: "Ana"}},
		Orders: []snapshot.DraftOrder{{
			CustomerName: "Ana", Date: march6, Total: dec("20"),
			Items: []snapshot.DraftItem{{ProductName: "product a", Quantity: 2, PriceType: models.PriceRetail, Price: dec("10")}},
		}},
	}

	res, err := ImportSnapshot(context.Background(), drafts, current, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Created.Customers)
	assert.Zero(t, res.Created.Products)
	require.Len(t, res.Ledger.Customers, 1)
	require.Len(t, res.Ledger.Orders, 1)
	assert.Equal(t, "c1", res.Ledger.Orders[0].CustomerID)
	assert.Equal(t, "pa", res.Ledger.Orders[0].Items[0].ProductID)
}

func TestImportSkipsWithReasons(t *testing.T) {
	drafts := snapshot.Drafts{
		Products: []snapshot.ProductRow{
			{Description: ""},
			{Description: "Refund", RetailPrice: dec("-1")},
			{Description: "Product C", RetailPrice: dec("3")},
			{Description: "product c", RetailPrice: dec("4")},
		},
		Customers: []snapshot.CustomerRow{{Name: " "}},
		Orders: []snapshot.DraftOrder{
			{CustomerName: "Nobody", Date: march6, Total: dec("1")},
			{CustomerName: "Ana", Date: march6, Total: dec("9"), Items: []snapshot.DraftItem{
				{ProductName: "Product A", Quantity: 1, Price: dec("4")},
				{ProductName: "Ghost", Quantity: 1, Price: dec("5")},
			}},
			{CustomerName: "Ana", Date: march6, Total: dec("13"), Items: []snapshot.DraftItem{
				{ProductName: "Product C", Quantity: 0, Price: dec("3")},
				{ProductName: "Product A", Quantity: 1, PriceType: "bulk", Price: dec("10")},
			}},
			{CustomerName: "Ana", Date: march6, Total: dec("3"), Items: []snapshot.DraftItem{
				{ProductName: "Product C", Quantity: -1, Price: dec("3")},
			}},
		},
		Payments: []snapshot.DraftPayment{
			{CustomerName: "Ana", HasOrder: false, Amount: dec("5"), Date: march6},
			{CustomerName: "Ana", HasOrder: true, OrderDate: march6, OrderTotal: dec("99"), Amount: dec("5"), Date: march6},
			{CustomerName: "Nobody", HasOrder: true, OrderDate: march6, OrderTotal: dec("13"), Amount: dec("5"), Date: march6},
			{CustomerName: "Ana", HasOrder: true, OrderDate: march6, OrderTotal: dec("13"), Amount: dec("-5"), Date: march6},
		},
	}

	res, err := ImportSnapshot(context.Background(), drafts, sampleLedger(), nil)
	require.NoError(t, err)

	assert.Equal(t, Counts{Products: 1, Orders: 1}, res.Created)
	assert.Equal(t, Counts{Products: 3, Customers: 1, Orders: 3, Payments: 4}, res.Skipped)

	reasons := map[string]int{}
	for _, is := range res.Issues {
		reasons[is.Reason]++
	}
	assert.Equal(t, map[string]int{
		ReasonMissingName:     2,
		ReasonNegativeAmount:  2,
		ReasonUnknownCustomer: 2,
		ReasonUnknownProduct:  1,
		ReasonNoItems:         1,
		ReasonUnresolvedOrder: 2,
	}, reasons)

	created := res.Ledger.Orders[len(res.Ledger.Orders)-1]
	require.Len(t, created.Items, 1)
	assert.Equal(t, "pa", created.Items[0].ProductID)
	assert.Equal(t, models.PriceRetail, created.Items[0].PriceType)
	assert.Equal(t, "13", created.Total.String())
	assert.Equal(t, models.StatusPending, created.Status)
}

func TestImportKeepsDuplicatePayments(t *testing.T) {
	current := sampleLedger()
	current.Payments = nil
	current.Orders[0].AmountPaid = decimal.Zero
	current.Orders[0].Status = models.StatusPending

	payment := snapshot.DraftPayment{
		CustomerName: "Ana", HasOrder: true, OrderDate: march6, OrderTotal: dec("35"),
		Date: march6, Amount: dec("10"),
	}
	drafts := snapshot.Drafts{Payments: []snapshot.DraftPayment{payment, payment}}

	res, err := ImportSnapshot(context.Background(), drafts, current, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created.Payments)
	assert.Equal(t, "20", res.Ledger.Orders[0].AmountPaid.String())
	assert.Equal(t, []string{"o1"}, res.Recompute)

	again, err := ImportSnapshot(context.Background(), drafts, res.Ledger, nil)
	require.NoError(t, err)
	assert.Zero(t, again.Created.Payments)

	// a third identical payment in the snapshot is new
	drafts.Payments = append(drafts.Payments, payment)
	third, err := ImportSnapshot(context.Background(), drafts, res.Ledger, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Created.Payments)
	assert.Equal(t, models.StatusPartial, third.Ledger.Orders[0].Status)
	assert.Equal(t, "30", third.Ledger.Orders[0].AmountPaid.String())
}

func TestImportStopsOnWriteError(t *testing.T) {
	drafts := snapshot.ParseSnapshot(snapshot.ExportLedger(sampleLedger()))
	w := &recordingWriter{failOn: models.KindOrders}

	res, err := ImportSnapshot(context.Background(), drafts, ledger.Ledger{}, w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "importing orders")
	assert.Equal(t, Counts{Products: 2, Customers: 1}, res.Created)
	assert.Len(t, res.Ledger.Products, 2)
	assert.Empty(t, res.Ledger.Orders)
	assert.Equal(t, []models.Kind{models.KindProducts, models.KindCustomers}, w.batches)
}

func TestImportDoesNotModifyCurrent(t *testing.T) {
	current := sampleLedger()
	drafts := snapshot.Drafts{Customers: []snapshot.CustomerRow{{Name: "Luis"}}}

	res, err := ImportSnapshot(context.Background(), drafts, current, nil)
	require.NoError(t, err)
	assert.Len(t, res.Ledger.Customers, 2)
	assert.Len(t, current.Customers, 1)
}
