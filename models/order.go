package models

import (
	"github.com/shopspring/decimal"
)

// PriceType selects which product price tier a line item is charged at.
type PriceType string

const (
	PriceRetail    PriceType = "retail"
	PriceWholesale PriceType = "wholesale"
)

// Valid reports whether t is a known tier.
func (t PriceType) Valid() bool {
	return t == PriceRetail || t == PriceWholesale
}

// Status is the settlement status of an order.
type Status string

const (
	StatusPending Status = "Pending"
	StatusPartial Status = "Partial"
	StatusPaid    Status = "Paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid:
		return true
	}
	return false
}

// LineItem is one product row of an order. Price is the tier price at order time.
type LineItem struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	PriceType PriceType       `json:"priceType"`
	Price     decimal.Decimal `json:"price"`
}

// Value returns price × quantity.
func (li LineItem) Value() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order is a customer order composed of line items.
// Total is fixed when the order is saved; AmountPaid and Status are derived from payments.
type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customerId"`
	Date       Date            `json:"date"`
	Items      []LineItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	Status     Status          `json:"status"`
}

// Balance returns the outstanding amount, which is negative for overpaid orders.
func (o Order) Balance() decimal.Decimal {
	return o.Total.Sub(o.AmountPaid)
}

// LineItemInput is one row of the order form.
type LineItemInput struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	PriceType PriceType `json:"priceType"`
}

// OrderInput is used for creating/replacing orders. InitialPayment, when positive,
// is recorded as a payment dated on the order date.
type OrderInput struct {
	CustomerID     string           `json:"customerId"`
	Date           Date             `json:"date"`
	Items          []LineItemInput  `json:"items"`
	InitialPayment *decimal.Decimal `json:"initialPayment,omitempty"`
	Reference      string           `json:"reference,omitempty"`
}

func (o *OrderInput) Validate() string {
	if o.CustomerID == "" {
		return "customerId is required"
	}
	if o.Date.IsZero() {
		return "date is required"
	}
	if len(o.Items) == 0 {
		return "order must have at least one item"
	}
	for i := range o.Items {
		switch o.Items[i].PriceType {
		case "":
			o.Items[i].PriceType = PriceRetail
		case PriceRetail, PriceWholesale:
		default:
			return "priceType must be one of: retail, wholesale"
		}
	}
	if o.InitialPayment != nil && o.InitialPayment.IsNegative() {
		return "initialPayment must be non-negative"
	}
	return ""
}
