package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Payment is an amount received against an order.
type Payment struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	Amount    decimal.Decimal `json:"amount"`
	Date      Date            `json:"date"`
	Reference string          `json:"reference,omitempty"`
}

// PaymentInput is used for recording/correcting payments.
type PaymentInput struct {
	OrderID   string          `json:"orderId"`
	Amount    decimal.Decimal `json:"amount"`
	Date      Date            `json:"date"`
	Reference string          `json:"reference"`
}

func (p *PaymentInput) Validate() string {
	p.Reference = strings.TrimSpace(p.Reference)
	if p.OrderID == "" {
		return "orderId is required"
	}
	if p.Amount.IsNegative() {
		return "amount must be non-negative"
	}
	if p.Date.IsZero() {
		p.Date = Today()
	}
	return ""
}

// Payment returns the payment described by the input.
func (p PaymentInput) Payment(id string) Payment {
	return Payment{ID: id, OrderID: p.OrderID, Amount: p.Amount, Date: p.Date, Reference: p.Reference}
}
