package ledger

import (
	"testing"

	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	productA = models.Product{ID: "a", Description: "Product A", RetailPrice: dec("10.00"), WholesalePrice: dec("8.00")}
	productB = models.Product{ID: "b", Description: "Product B", RetailPrice: dec("6.50"), WholesalePrice: dec("5.00")}
)

func TestComputeLineValue(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		pt       models.PriceType
		expected string
	}{
		{"retail", 2, models.PriceRetail, "20"},
		{"wholesale", 3, models.PriceWholesale, "24"},
		{"unknown tier charges retail", 1, "bulk", "10"},
		{"zero quantity", 0, models.PriceRetail, "0"},
		{"negative quantity", -4, models.PriceRetail, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLineValue(productA, tt.quantity, tt.pt)
			assert.True(t, dec(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestComputeOrderTotalTwoItems(t *testing.T) {
	items := []models.LineItem{
		{ProductID: "a", Quantity: 2, PriceType: models.PriceRetail, Price: dec("10.00")},
		{ProductID: "b", Quantity: 3, PriceType: models.PriceWholesale, Price: dec("5.00")},
	}
	assert.Equal(t, "35.00", ComputeOrderTotal(items).StringFixed(2))
}

func TestComputeOrderTotalIgnoresIncompleteRows(t *testing.T) {
	items := []models.LineItem{
		{ProductID: "a", Quantity: 1, Price: dec("10")},
		{ProductID: "a", Quantity: 0, Price: dec("10")},
		{ProductID: "a", Quantity: -2, Price: dec("10")},
	}
	assert.True(t, dec("10").Equal(ComputeOrderTotal(items)))
}

func TestComputeOrderTotalNoFloatDrift(t *testing.T) {
	items := make([]models.LineItem, 0, 1000)
	for range 1000 {
		items = append(items, models.LineItem{Quantity: 1, Price: dec("0.10")})
	}
	assert.Equal(t, "100", ComputeOrderTotal(items).String())
}

func TestPriceItems(t *testing.T) {
	products := map[string]models.Product{"a": productA, "b": productB}
	rows := []models.LineItemInput{
		{ProductID: "a", Quantity: 2, PriceType: models.PriceRetail},
		{ProductID: "missing", Quantity: 1, PriceType: models.PriceRetail},
		{ProductID: "b", Quantity: 3, PriceType: models.PriceWholesale},
		{ProductID: "b", Quantity: 0, PriceType: models.PriceRetail},
	}

	items, total, skipped := PriceItems(rows, products)
	require.Len(t, items, 2)
	assert.Equal(t, []int{1, 3}, skipped)
	assert.Equal(t, "35.00", total.StringFixed(2))
	assert.True(t, dec("5.00").Equal(items[1].Price))
	assert.Equal(t, models.PriceWholesale, items[1].PriceType)
	assert.True(t, total.Equal(ComputeOrderTotal(items)))
}

func TestPriceItemsSnapshotsPrice(t *testing.T) {
	products := map[string]models.Product{"a": productA}
	items, _, _ := PriceItems([]models.LineItemInput{{ProductID: "a", Quantity: 1}}, products)

	products["a"] = models.Product{ID: "a", RetailPrice: dec("99")}
	assert.True(t, dec("10").Equal(items[0].Price))
	assert.Equal(t, models.PriceRetail, items[0].PriceType)
}
