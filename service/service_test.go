package service

import (
	"context"
	"errors"
	"testing"

	"github.com/satheeshds/orderledger/events"
	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acct = "acct"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	svc      *Ledger
	store    *store.MemoryStore
	events   *events.Recorder
	customer models.Customer
	a, b     models.Product
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{store: store.NewMemoryStore(), events: &events.Recorder{}}
	f.svc = New(f.store, f.events)

	var err error
	f.a, err = f.svc.CreateProduct(ctx, acct, models.ProductInput{Description: "Product A", RetailPrice: dec("10.00"), WholesalePrice: dec("8.00")})
	require.NoError(t, err)
	f.b, err = f.svc.CreateProduct(ctx, acct, models.ProductInput{Description: "Product B", RetailPrice: dec("6.50"), WholesalePrice: dec("5.00")})
	require.NoError(t, err)
	f.customer, err = f.svc.CreateCustomer(ctx, acct, models.CustomerInput{Name: "Ana"})
	require.NoError(t, err)
	return f
}

func (f fixture) orderInput() models.OrderInput {
	return models.OrderInput{
		CustomerID: f.customer.ID,
		Date:       models.MustParseDate("2024-03-06"),
		Items: []models.LineItemInput{
			{ProductID: f.a.ID, Quantity: 2, PriceType: models.PriceRetail},
			{ProductID: f.b.ID, Quantity: 3, PriceType: models.PriceWholesale},
		},
	}
}

func TestOrderPaymentLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	res, err := f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)
	order := res.Order
	assert.Equal(t, "35.00", order.Total.StringFixed(2))
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Empty(t, res.SkippedRows)

	paid, err := f.svc.RecordPayment(ctx, acct, models.PaymentInput{OrderID: order.ID, Amount: dec("35.00"), Date: order.Date})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Order.Status)
	assert.True(t, paid.Overpayment.IsZero())

	corrected, err := f.svc.UpdatePayment(ctx, acct, paid.Payment.ID, models.PaymentInput{OrderID: order.ID, Amount: dec("20.00"), Date: order.Date})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartial, corrected.Order.Status)
	assert.Equal(t, "20.00", corrected.Order.AmountPaid.StringFixed(2))

	detail, err := f.svc.GetOrder(ctx, acct, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartial, detail.Status)
	assert.Equal(t, "Ana", detail.CustomerName)
	assert.Equal(t, "15.00", detail.Balance.StringFixed(2))
	assert.Len(t, detail.Payments, 1)

	after, err := f.svc.DeletePayment(ctx, acct, paid.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, after.Status)
	assert.True(t, after.AmountPaid.IsZero())

	var types []string
	for _, e := range f.events.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{events.OrderCreated, events.OrderSettled, events.OrderSettled, events.OrderSettled}, types)
}

func TestCreateOrderWithInitialPayment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	in := f.orderInput()
	initial := dec("10")
	in.InitialPayment = &initial
	in.Reference = "deposit"
	in.Items = append(in.Items, models.LineItemInput{ProductID: "missing", Quantity: 1}, models.LineItemInput{ProductID: f.a.ID, Quantity: 0})

	res, err := f.svc.CreateOrder(ctx, acct, in)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, res.SkippedRows)
	assert.Equal(t, models.StatusPartial, res.Order.Status)

	payments, err := f.svc.ListPayments(ctx, acct, res.Order.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "deposit", payments[0].Reference)
	assert.Equal(t, "2024-03-06", payments[0].Date.String())
	assert.Equal(t, "Order from 2024-03-06 (Total: 35.00)", payments[0].OrderReference)
}

func TestCreateOrderValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	var verr *ValidationError

	in := f.orderInput()
	in.CustomerID = "nobody"
	_, err := f.svc.CreateOrder(ctx, acct, in)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "customer not found", verr.Msg)

	in = f.orderInput()
	in.Items = []models.LineItemInput{{ProductID: "missing", Quantity: 1}}
	res, err := f.svc.CreateOrder(ctx, acct, in)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []int{0}, res.SkippedRows)
}

func TestOverpaymentIsAcceptedAndReported(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	res, err := f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)

	paid, err := f.svc.RecordPayment(ctx, acct, models.PaymentInput{OrderID: res.Order.ID, Amount: dec("50")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Order.Status)
	assert.Equal(t, "15", paid.Overpayment.String())
	assert.False(t, paid.Payment.Date.IsZero())
}

func TestMovePaymentRecomputesBothOrders(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	first, err := f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)

	p, err := f.svc.RecordPayment(ctx, acct, models.PaymentInput{OrderID: first.Order.ID, Amount: dec("5")})
	require.NoError(t, err)
	moved, err := f.svc.UpdatePayment(ctx, acct, p.Payment.ID, models.PaymentInput{OrderID: second.Order.ID, Amount: dec("5")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartial, moved.Order.Status)

	o, err := f.svc.GetOrder(ctx, acct, first.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, o.Status)
}

func TestReplaceOrderRecomputes(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	res, err := f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, acct, models.PaymentInput{OrderID: res.Order.ID, Amount: dec("20")})
	require.NoError(t, err)

	in := f.orderInput()
	in.Items = []models.LineItemInput{{ProductID: f.a.ID, Quantity: 2}}
	replaced, err := f.svc.ReplaceOrder(ctx, acct, res.Order.ID, in)
	require.NoError(t, err)
	assert.Equal(t, res.Order.ID, replaced.Order.ID)
	assert.Equal(t, "20", replaced.Order.Total.String())
	assert.Equal(t, models.StatusPaid, replaced.Order.Status)
}

func TestDeleteOrderCascadesPayments(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	res, err := f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, acct, models.PaymentInput{OrderID: res.Order.ID, Amount: dec("5")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteOrder(ctx, acct, res.Order.ID))

	payments, err := f.svc.ListPayments(ctx, acct, "")
	require.NoError(t, err)
	assert.Empty(t, payments)
	_, err = f.svc.GetOrder(ctx, acct, res.Order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, acct, res.Order.ID), ErrNotFound)
}

func TestCatalogUniquenessAndInUse(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.CreateProduct(ctx, acct, models.ProductInput{Description: " product a "})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.svc.CreateCustomer(ctx, acct, models.CustomerInput{Name: "ANA"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.UpdateProduct(ctx, acct, f.b.ID, models.ProductInput{Description: "Product A"})
	assert.ErrorIs(t, err, ErrConflict)
	renamed, err := f.svc.UpdateProduct(ctx, acct, f.a.ID, models.ProductInput{Description: "product a", RetailPrice: dec("11")})
	require.NoError(t, err)
	assert.Equal(t, "product a", renamed.Description)

	_, err = f.svc.UpdateCustomer(ctx, acct, "missing", models.CustomerInput{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)

	var verr *ValidationError
	_, err = f.svc.CreateProduct(ctx, acct, models.ProductInput{Description: "Neg", RetailPrice: dec("-1")})
	assert.True(t, errors.As(err, &verr))

	_, err = f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.DeleteProduct(ctx, acct, f.a.ID), ErrInUse)
	assert.ErrorIs(t, f.svc.DeleteCustomer(ctx, acct, f.customer.ID), ErrInUse)

	unused, err := f.svc.CreateProduct(ctx, acct, models.ProductInput{Description: "Unused"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteProduct(ctx, acct, unused.ID))
}

func TestListOrdersShowsMissingCustomer(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)
	// customers can disappear behind the service's back
	require.NoError(t, f.store.Delete(ctx, acct, models.KindCustomers, f.customer.ID))

	orders, err := f.svc.ListOrders(ctx, acct, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, NotAvailable, orders[0].CustomerName)

	paid, err := f.svc.ListOrders(ctx, acct, OrderFilter{Status: models.StatusPaid})
	require.NoError(t, err)
	assert.Empty(t, paid)
}

func TestRecomputeRepairsDrift(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	res, err := f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, acct, models.PaymentInput{OrderID: res.Order.ID, Amount: dec("10")})
	require.NoError(t, err)

	// a stale client wrote the derived fields directly
	require.NoError(t, f.store.Update(ctx, acct, models.KindOrders, res.Order.ID, map[string]any{"amountPaid": "99", "status": "Paid"}))

	repaired, err := f.svc.ReconcileAll(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Order.ID}, repaired)

	o, err := f.svc.GetOrder(ctx, acct, res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPartial, o.Status)
	assert.Equal(t, "10", o.AmountPaid.String())

	again, err := f.svc.ReconcileAll(ctx, acct)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestRecomputeLegacyOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	id, err := f.store.Insert(ctx, acct, models.KindOrders, map[string]any{
		"customerId": f.customer.ID, "date": "2023-11-02T00:00:00.000Z",
		"productId": f.a.ID, "quantity": 4, "total": 40, "amountPaid": 0, "status": "Pendiente",
	})
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, acct, models.PaymentInput{OrderID: id, Amount: dec("40")})
	require.NoError(t, err)

	o, err := f.svc.GetOrder(ctx, acct, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "10", o.Items[0].Price.String())
	assert.Equal(t, "2023-11-02", o.Date.String())
}

func TestExportImportIntoAnotherAccount(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	res, err := f.svc.CreateOrder(ctx, acct, f.orderInput())
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, acct, models.PaymentInput{OrderID: res.Order.ID, Amount: dec("20"), Date: res.Order.Date})
	require.NoError(t, err)

	snap, err := f.svc.Export(ctx, acct)
	require.NoError(t, err)

	// the target already knows the customer under different casing
	_, err = f.svc.CreateCustomer(ctx, "other", models.CustomerInput{Name: "ana"})
	require.NoError(t, err)

	imported, err := f.svc.Import(ctx, "other", snap)
	require.NoError(t, err)
	assert.Equal(t, 0, imported.Created.Customers)
	assert.Equal(t, 2, imported.Created.Products)
	assert.Equal(t, 1, imported.Created.Orders)
	assert.Equal(t, 1, imported.Created.Payments)

	orders, err := f.svc.ListOrders(ctx, "other", OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ana", orders[0].CustomerName)
	assert.Equal(t, models.StatusPartial, orders[0].Status)
	assert.Equal(t, "20", orders[0].AmountPaid.String())

	again, err := f.svc.Import(ctx, "other", snap)
	require.NoError(t, err)
	assert.Zero(t, again.Created)

	l, err := f.svc.Load(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, l.Customers, 1)
	assert.Len(t, l.Payments, 1)
}

func TestProfitabilityPercentages(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	empty, err := f.svc.GetProfitability(ctx, acct, "2024-03")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = f.svc.SetProfitability(ctx, acct, "2024-03", f.a.ID, dec("12.5"))
	require.NoError(t, err)
	pct, err := f.svc.SetProfitability(ctx, acct, "2024-03", f.b.ID, dec("30"))
	require.NoError(t, err)
	assert.Len(t, pct, 2)

	got, err := f.svc.GetProfitability(ctx, acct, "2024-03")
	require.NoError(t, err)
	assert.True(t, dec("12.5").Equal(got[f.a.ID]))

	var verr *ValidationError
	_, err = f.svc.GetProfitability(ctx, acct, "March")
	assert.ErrorAs(t, err, &verr)
	_, err = f.svc.SetProfitability(ctx, acct, "2024-03", f.a.ID, dec("-1"))
	assert.ErrorAs(t, err, &verr)
	_, err = f.svc.SetProfitability(ctx, acct, "2024-03", "missing", dec("1"))
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, "2024-03", PeriodOf(models.MustParseDate("2024-03-31")))
}
