package snapshot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/satheeshds/orderledger/models"
	"github.com/shopspring/decimal"
)

// Sheet names, in workbook order.
const (
	SheetProducts  = "Products"
	SheetCustomers = "Customers"
	SheetOrders    = "Orders"
	SheetPayments  = "Payments"
)

var (
	productHeader  = []string{"description", "retailPrice", "wholesalePrice"}
	customerHeader = []string{"name", "phone"}
	orderHeader    = []string{"customerName", "date", "total", "status", "amountPaid", "productName", "quantity", "priceType", "price"}
	paymentHeader  = []string{"customerName", "orderReference", "date", "amount", "reference"}
)

// Cell is a typed sheet value: string, decimal.Decimal or int.
type Cell = any

// Table is one sheet: a header row and data rows.
type Table struct {
	Name   string
	Header []string
	Rows   [][]Cell
}

// RowIssue records a sheet row that could not be read. Row is the 1-based sheet row,
// so the first data row is 2.
type RowIssue struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Tables lays the snapshot out as sheets.
func (s Snapshot) Tables() []Table {
	products := Table{Name: SheetProducts, Header: productHeader}
	for _, p := range s.Products {
		products.Rows = append(products.Rows, []Cell{p.Description, p.RetailPrice, p.WholesalePrice})
	}
	customers := Table{Name: SheetCustomers, Header: customerHeader}
	for _, c := range s.Customers {
		customers.Rows = append(customers.Rows, []Cell{c.Name, c.Phone})
	}
	orders := Table{Name: SheetOrders, Header: orderHeader}
	for _, o := range s.Orders {
		orders.Rows = append(orders.Rows, []Cell{
			o.CustomerName, o.Date.String(), o.Total, string(o.Status), o.AmountPaid,
			o.ProductName, o.Quantity, string(o.PriceType), o.Price,
		})
	}
	payments := Table{Name: SheetPayments, Header: paymentHeader}
	for _, p := range s.Payments {
		payments.Rows = append(payments.Rows, []Cell{p.CustomerName, p.OrderReference, p.Date.String(), p.Amount, p.Reference})
	}
	return []Table{products, customers, orders, payments}
}

// Strings renders the table, header first, as text cells.
func (t Table) Strings() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Header...))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			switch v := c.(type) {
			case decimal.Decimal:
				cells[i] = v.String()
			case int:
				cells[i] = strconv.Itoa(v)
			default:
				cells[i] = fmt.Sprint(v)
			}
		}
		out = append(out, cells)
	}
	return out
}

// rowReader reads cells by header name. Header names match ignoring case and spaces.
type rowReader struct {
	cols  map[string]int
	cells []string
	err   error
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", ""))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func (r *rowReader) str(name string) string {
	i, ok := r.cols[strings.ToLower(name)]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r *rowReader) num(name string) decimal.Decimal {
	s := r.str(name)
	if s == "" || r.err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		r.err = fmt.Errorf("%s: %q is not a number", name, s)
	}
	return d
}

func (r *rowReader) whole(name string) int {
	s := r.str(name)
	if s == "" || r.err != nil {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		r.err = fmt.Errorf("%s: %q is not a whole number", name, s)
		return 0
	}
	return int(d.IntPart())
}

func (r *rowReader) date(name string) models.Date {
	s := r.str(name)
	if r.err != nil {
		return models.Date{}
	}
	d, err := models.ParseDate(s)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", name, err)
	}
	return d
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// FromTables reads sheets back into a snapshot. Sheets are found by name ignoring case
// and missing sheets read as empty. Blank rows are ignored; rows with unreadable cells
// are skipped and reported.
func FromTables(tables map[string][][]string) (Snapshot, []RowIssue) {
	var s Snapshot
	var issues []RowIssue

	byName := make(map[string][][]string, len(tables))
	for name, rows := range tables {
		byName[strings.ToLower(strings.TrimSpace(name))] = rows
	}

	read := func(sheet string, fn func(r *rowReader)) {
		rows := byName[strings.ToLower(sheet)]
		if len(rows) == 0 {
			return
		}
		cols := columnIndex(rows[0])
		for i, cells := range rows[1:] {
			if blank(cells) {
				continue
			}
			r := &rowReader{cols: cols, cells: cells}
			fn(r)
			if r.err != nil {
				issues = append(issues, RowIssue{Sheet: sheet, Row: i + 2, Reason: r.err.Error()})
			}
		}
	}

	read(SheetProducts, func(r *rowReader) {
		p := ProductRow{
			Description:    r.str("description"),
			RetailPrice:    r.num("retailPrice"),
			WholesalePrice: r.num("wholesalePrice"),
		}
		if r.err == nil {
			s.Products = append(s.Products, p)
		}
	})
	read(SheetCustomers, func(r *rowReader) {
		s.Customers = append(s.Customers, CustomerRow{Name: r.str("name"), Phone: r.str("phone")})
	})
	read(SheetOrders, func(r *rowReader) {
		o := OrderRow{
			CustomerName: r.str("customerName"),
			Date:         r.date("date"),
			Total:        r.num("total"),
			Status:       models.Status(r.str("status")),
			AmountPaid:   r.num("amountPaid"),
			ProductName:  r.str("productName"),
			Quantity:     r.whole("quantity"),
			PriceType:    models.PriceType(strings.ToLower(r.str("priceType"))),
			Price:        r.num("price"),
		}
		if r.err == nil {
			s.Orders = append(s.Orders, o)
		}
	})
	read(SheetPayments, func(r *rowReader) {
		p := PaymentRow{
			CustomerName:   r.str("customerName"),
			OrderReference: r.str("orderReference"),
			Date:           r.date("date"),
			Amount:         r.num("amount"),
			Reference:      r.str("reference"),
		}
		if r.err == nil {
			s.Payments = append(s.Payments, p)
		}
	})
	return s, issues
}
