package snapshot

import (
	"fmt"
	"regexp"

	"github.com/satheeshds/orderledger/ledger"
	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
)

// Placeholders written for references that no longer resolve.
const (
	UnknownCustomer = "Unknown Customer"
	UnknownProduct  = "Unknown Product"
	UnknownOrder    = "Unknown Order"
)

type ProductRow struct {
	Description    string          `json:"description"`
	RetailPrice    decimal.Decimal `json:"retailPrice"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
}

type CustomerRow struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// OrderRow is one line item of an order with the order's fields repeated.
type OrderRow struct {
	CustomerName string           `json:"customerName"`
	Date         models.Date      `json:"date"`
	Total        decimal.Decimal  `json:"total"`
	Status       models.Status    `json:"status"`
	AmountPaid   decimal.Decimal  `json:"amountPaid"`
	ProductName  string           `json:"productName"`
	Quantity     int              `json:"quantity"`
	PriceType    models.PriceType `json:"priceType"`
	Price        decimal.Decimal  `json:"price"`
}

type PaymentRow struct {
	CustomerName   string          `json:"customerName"`
	OrderReference string          `json:"orderReference"`
	Date           models.Date     `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	Reference      string          `json:"reference"`
}

// Snapshot is the id-free tabular form of a ledger.
type Snapshot struct {
	Products  []ProductRow  `json:"products"`
	Customers []CustomerRow `json:"customers"`
	Orders    []OrderRow    `json:"orders"`
	Payments  []PaymentRow  `json:"payments"`
}

// OrderReference names an order the way payment rows refer to it.
func OrderReference(date models.Date, total decimal.Decimal) string {
	return fmt.Sprintf("Order from %s (Total: %s)", date, total.StringFixed(2))
}

var orderReferenceRe = regexp.MustCompile(`^Order from (\d{4}-\d{2}-\d{2}) \(Total: (-?\d+(?:\.\d+)?)\)$`)

// ParseOrderReference extracts the order date and total from an OrderReference string.
func ParseOrderReference(ref string) (models.Date, decimal.Decimal, bool) {
	m := orderReferenceRe.FindStringSubmatch(ref)
	if m == nil {
		return models.Date{}, decimal.Zero, false
	}
	date, err := models.ParseDate(m[1])
	if err != nil {
		return models.Date{}, decimal.Zero, false
	}
	total, err := decimal.NewFromString(m[2])
	if err != nil {
		return models.Date{}, decimal.Zero, false
	}
	return date, total, true
}

// ExportLedger is ExportSnapshot over a loaded ledger.
func ExportLedger(l ledger.Ledger) Snapshot {
	return ExportSnapshot(l.Products, l.Customers, l.Orders, l.Payments)
}

// ExportSnapshot replaces ids with names. Orders are flattened to one row per item;
// an order without items still produces one row with an empty product name.
func ExportSnapshot(products []models.Product, customers []models.Customer, orders []models.Order, payments []models.Payment) Snapshot {
	productNames := make(map[string]string, len(products))
	customerNames := make(map[string]string, len(customers))
	ordersByID := make(map[string]models.Order, len(orders))

	s := Snapshot{
		Products:  make([]ProductRow, 0, len(products)),
		Customers: make([]CustomerRow, 0, len(customers)),
		Orders:    make([]OrderRow, 0, len(orders)),
		Payments:  make([]PaymentRow, 0, len(payments)),
	}
	for _, p := range products {
		productNames[p.ID] = p.Description
		s.Products = append(s.Products, ProductRow{
			Description:    p.Description,
			RetailPrice:    p.RetailPrice,
			WholesalePrice: p.WholesalePrice,
		})
	}
	for _, c := range customers {
		customerNames[c.ID] = c.Name
		s.Customers = append(s.Customers, CustomerRow{Name: c.Name, Phone: c.Phone})
	}

	customerName := func(id string) string {
		if name, ok := customerNames[id]; ok {
			return name
		}
		return UnknownCustomer
	}

	for _, o := range orders {
		ordersByID[o.ID] = o
		common := OrderRow{
			CustomerName: customerName(o.CustomerID),
			Date:         o.Date,
			Total:        o.Total,
			Status:       o.Status,
			AmountPaid:   o.AmountPaid,
		}
		if len(o.Items) == 0 {
			s.Orders = append(s.Orders, common)
			continue
		}
		for _, it := range o.Items {
			row := common
			row.ProductName = UnknownProduct
			if name, ok := productNames[it.ProductID]; ok {
				row.ProductName = name
			}
			row.Quantity = it.Quantity
			row.PriceType = it.PriceType
			row.Price = it.Price
			s.Orders = append(s.Orders, row)
		}
	}

	for _, p := range payments {
		row := PaymentRow{
			CustomerName:   UnknownCustomer,
			OrderReference: UnknownOrder,
			Date:           p.Date,
			Amount:         p.Amount,
			Reference:      p.Reference,
		}
		if o, ok := ordersByID[p.OrderID]; ok {
			row.CustomerName = customerName(o.CustomerID)
			row.OrderReference = OrderReference(o.Date, o.Total)
		}
		s.Payments = append(s.Payments, row)
	}
	return s
}
