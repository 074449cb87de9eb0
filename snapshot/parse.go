package snapshot

import (
	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
)

type DraftItem struct {
	ProductName string
	Quantity    int
	PriceType   models.PriceType
	Price       decimal.Decimal
}

// DraftOrder is an order regrouped from its flattened rows. References are still names.
type DraftOrder struct {
	CustomerName string
	Date         models.Date
	Total        decimal.Decimal
	Status       models.Status
	AmountPaid   decimal.Decimal
	Items        []DraftItem
}

// DraftPayment is a payment row with its order reference parsed. HasOrder is false when
// the reference is not in the "Order from ..." form.
type DraftPayment struct {
	CustomerName string
	OrderDate    models.Date
	OrderTotal   decimal.Decimal
	HasOrder     bool
	Date         models.Date
	Amount       decimal.Decimal
	Reference    string
}

// Drafts is a parsed snapshot ready for import.
type Drafts struct {
	Products  []ProductRow
	Customers []CustomerRow
	Orders    []DraftOrder
	Payments  []DraftPayment
}

type orderGroupKey struct {
	customer string
	date     string
	total    string
}

// ParseSnapshot undoes the flattening of ExportSnapshot. Order rows sharing customer
// name, date and total become one order, in the order they were first seen. Rows with
// an empty product name add no item.
func ParseSnapshot(s Snapshot) Drafts {
	d := Drafts{
		Products:  append([]ProductRow(nil), s.Products...),
		Customers: append([]CustomerRow(nil), s.Customers...),
		Orders:    []DraftOrder{},
		Payments:  make([]DraftPayment, 0, len(s.Payments)),
	}

	index := map[orderGroupKey]int{}
	for _, row := range s.Orders {
		key := orderGroupKey{customer: row.CustomerName, date: row.Date.String(), total: row.Total.String()}
		i, ok := index[key]
		if !ok {
			i = len(d.Orders)
			index[key] = i
			d.Orders = append(d.Orders, DraftOrder{
				CustomerName: row.CustomerName,
				Date:         row.Date,
				Total:        row.Total,
				Status:       row.Status,
				AmountPaid:   row.AmountPaid,
				Items:        []DraftItem{},
			})
		}
		if row.ProductName == "" {
			continue
		}
		d.Orders[i].Items = append(d.Orders[i].Items, DraftItem{
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			PriceType:   row.PriceType,
			Price:       row.Price,
		})
	}

	for _, row := range s.Payments {
		p := DraftPayment{
			CustomerName: row.CustomerName,
			Date:         row.Date,
			Amount:       row.Amount,
			Reference:    row.Reference,
		}
		p.OrderDate, p.OrderTotal, p.HasOrder = ParseOrderReference(row.OrderReference)
		d.Payments = append(d.Payments, p)
	}
	return d
}
