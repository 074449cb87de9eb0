// Package importer merges a parsed snapshot into an existing ledger. Records are matched
// on natural keys instead of ids, so importing the same snapshot twice creates nothing
// the second time.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/satheeshds/orderledger/ledger"
	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/snapshot"
	"github.com/shopspring/decimal"
)

// Writer persists one stage of new records and returns their ids in order.
// store.AccountWriter satisfies it.
type Writer interface {
	InsertBatch(ctx context.Context, kind models.Kind, records []any) ([]string, error)
}

// Reasons a snapshot record is not imported.
const (
	ReasonMissingName     = "name is required"
	ReasonNegativeAmount  = "amounts must be non-negative"
	ReasonUnknownCustomer = "customer not found"
	ReasonUnknownProduct  = "product not found"
	ReasonUnresolvedOrder = "order reference does not match any order"
	ReasonNoItems         = "order has no valid items"
)

// Counts holds a number per record kind.
type Counts struct {
	Products  int `json:"products"`
	Customers int `json:"customers"`
	Orders    int `json:"orders"`
	Payments  int `json:"payments"`
}

func (c *Counts) add(kind models.Kind) {
	switch kind {
	case models.KindProducts:
		c.Products++
	case models.KindCustomers:
		c.Customers++
	case models.KindOrders:
		c.Orders++
	case models.KindPayments:
		c.Payments++
	}
}

// Issue explains why a snapshot record was skipped.
type Issue struct {
	Kind   models.Kind `json:"kind"`
	Key    string      `json:"key"`
	Reason string      `json:"reason"`
}

// Result summarizes an import. Skipped counts both records that already existed and
// records listed in Issues. Ledger is the input ledger plus everything created, with
// the settlement of every order in Recompute brought up to date.
type Result struct {
	Created   Counts        `json:"created"`
	Skipped   Counts        `json:"skipped"`
	Issues    []Issue       `json:"issues"`
	Ledger    ledger.Ledger `json:"-"`
	Recompute []string      `json:"recompute"`
}

func (r *Result) skip(kind models.Kind, key, reason string) {
	r.Skipped.add(kind)
	if reason != "" {
		r.Issues = append(r.Issues, Issue{Kind: kind, Key: key, Reason: reason})
	}
}

type importer struct {
	ctx context.Context
	w   Writer
	res *Result
}

// write stores records as one batch. Without a writer ids are generated locally.
func (im *importer) write(kind models.Kind, records []any) ([]string, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if im.w == nil {
		ids := make([]string, len(records))
		for i := range ids {
			ids[i] = uuid.NewString()
		}
		return ids, nil
	}
	ids, err := im.w.InsertBatch(im.ctx, kind, records)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", kind, err)
	}
	if len(ids) != len(records) {
		return nil, fmt.Errorf("importing %s: wrote %d records, got %d ids", kind, len(records), len(ids))
	}
	return ids, nil
}

func toAny[T any](records []T) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

// ImportSnapshot adds the draft records missing from current. Stages run in dependency
// order (products, customers, orders, payments) and each stage is written before the
// next one resolves names to ids. A storage error stops the import; the returned result
// then describes the stages already written.
func ImportSnapshot(ctx context.Context, drafts snapshot.Drafts, current ledger.Ledger, w Writer) (Result, error) {
	res := Result{Ledger: current.Clone(), Issues: []Issue{}, Recompute: []string{}}
	im := &importer{ctx: ctx, w: w, res: &res}

	stages := []func(snapshot.Drafts) error{
		im.products,
		im.customers,
		im.orders,
		im.payments,
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := stage(drafts); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (im *importer) products(d snapshot.Drafts) error {
	l := &im.res.Ledger
	seen := map[string]bool{}
	for _, p := range l.Products {
		seen[models.NameKey(p.Description)] = true
	}

	var created []models.Product
	for _, row := range d.Products {
		key := models.NameKey(row.Description)
		switch {
		case key == "":
			im.res.skip(models.KindProducts, row.Description, ReasonMissingName)
		case row.RetailPrice.IsNegative() || row.WholesalePrice.IsNegative():
			im.res.skip(models.KindProducts, row.Description, ReasonNegativeAmount)
		case seen[key]:
			im.res.skip(models.KindProducts, row.Description, "")
		default:
			seen[key] = true
			created = append(created, models.Product{
				Description:    strings.TrimSpace(row.Description),
				RetailPrice:    row.RetailPrice,
				WholesalePrice: row.WholesalePrice,
			})
		}
	}

	ids, err := im.write(models.KindProducts, toAny(created))
	if err != nil {
		return err
	}
	for i := range created {
		created[i].ID = ids[i]
	}
	l.Products = append(l.Products, created...)
	im.res.Created.Products = len(created)
	return nil
}

func (im *importer) customers(d snapshot.Drafts) error {
	l := &im.res.Ledger
	seen := map[string]bool{}
	for _, c := range l.Customers {
		seen[models.NameKey(c.Name)] = true
	}

	var created []models.Customer
	for _, row := range d.Customers {
		key := models.NameKey(row.Name)
		switch {
		case key == "":
			im.res.skip(models.KindCustomers, row.Name, ReasonMissingName)
		case seen[key]:
			im.res.skip(models.KindCustomers, row.Name, "")
		default:
			seen[key] = true
			created = append(created, models.Customer{Name: strings.TrimSpace(row.Name), Phone: row.Phone})
		}
	}

	ids, err := im.write(models.KindCustomers, toAny(created))
	if err != nil {
		return err
	}
	for i := range created {
		created[i].ID = ids[i]
	}
	l.Customers = append(l.Customers, created...)
	im.res.Created.Customers = len(created)
	return nil
}

// nameIndex maps natural name keys to ids. The first record with a name wins.
func nameIndex[T any](records []T, fn func(T) (name, id string)) map[string]string {
	idx := make(map[string]string, len(records))
	for _, r := range records {
		name, id := fn(r)
		key := models.NameKey(name)
		if _, ok := idx[key]; !ok {
			idx[key] = id
		}
	}
	return idx
}

type orderKey struct {
	customerID string
	date       string
	total      string
}

func keyOf(o models.Order) orderKey {
	return orderKey{customerID: o.CustomerID, date: o.Date.String(), total: o.Total.String()}
}

func (im *importer) orders(d snapshot.Drafts) error {
	l := &im.res.Ledger
	customerIDs := nameIndex(l.Customers, func(c models.Customer) (string, string) { return c.Name, c.ID })
	productIDs := nameIndex(l.Products, func(p models.Product) (string, string) { return p.Description, p.ID })

	seen := map[orderKey]bool{}
	for _, o := range l.Orders {
		seen[keyOf(o)] = true
	}

	var created []models.Order
	for _, draft := range d.Orders {
		label := fmt.Sprintf("%s %s %s", draft.CustomerName, draft.Date, draft.Total.StringFixed(2))
		customerID, ok := customerIDs[models.NameKey(draft.CustomerName)]
		if !ok {
			im.res.skip(models.KindOrders, label, ReasonUnknownCustomer)
			continue
		}
		if draft.Total.IsNegative() {
			im.res.skip(models.KindOrders, label, ReasonNegativeAmount)
			continue
		}
		order := models.Order{
			CustomerID: customerID,
			Date:       draft.Date,
			Total:      draft.Total,
			AmountPaid: decimal.Zero,
			Status:     models.StatusPending,
		}
		key := keyOf(order)
		if seen[key] {
			im.res.skip(models.KindOrders, label, "")
			continue
		}

		items, reason := im.resolveItems(draft, productIDs)
		if reason != "" {
			im.res.skip(models.KindOrders, label, reason)
			continue
		}
		if len(items) == 0 && len(draft.Items) > 0 {
			im.res.skip(models.KindOrders, label, ReasonNoItems)
			continue
		}
		order.Items = items
		seen[key] = true
		created = append(created, order)
	}

	ids, err := im.write(models.KindOrders, toAny(created))
	if err != nil {
		return err
	}
	for i := range created {
		created[i].ID = ids[i]
	}
	l.Orders = append(l.Orders, created...)
	im.res.Created.Orders = len(created)
	return nil
}

// resolveItems maps item product names to ids. Items with a non-positive quantity are
// dropped; any unknown product or negative price rejects the whole order.
func (im *importer) resolveItems(draft snapshot.DraftOrder, productIDs map[string]string) ([]models.LineItem, string) {
	items := make([]models.LineItem, 0, len(draft.Items))
	for _, it := range draft.Items {
		productID, ok := productIDs[models.NameKey(it.ProductName)]
		if !ok {
			return nil, ReasonUnknownProduct
		}
		if it.Price.IsNegative() {
			return nil, ReasonNegativeAmount
		}
		if it.Quantity <= 0 {
			slog.Debug("dropping imported item without quantity", "customer", draft.CustomerName, "product", it.ProductName)
			continue
		}
		pt := it.PriceType
		if !pt.Valid() {
			pt = models.PriceRetail
		}
		items = append(items, models.LineItem{ProductID: productID, Quantity: it.Quantity, PriceType: pt, Price: it.Price})
	}
	return items, ""
}

type paymentKey struct {
	orderID string
	date    string
	amount  string
}

type orderRef struct {
	customerID string
	date       string
	total      string
}

func (im *importer) payments(d snapshot.Drafts) error {
	l := &im.res.Ledger
	customerIDs := nameIndex(l.Customers, func(c models.Customer) (string, string) { return c.Name, c.ID })

	// first order wins when several share customer, date and total
	ordersByRef := map[orderRef]string{}
	for _, o := range l.Orders {
		ref := orderRef{customerID: o.CustomerID, date: o.Date.String(), total: o.Total.StringFixed(2)}
		if _, ok := ordersByRef[ref]; !ok {
			ordersByRef[ref] = o.ID
		}
	}

	// each stored payment absorbs one identical draft
	existing := map[paymentKey]int{}
	for _, p := range l.Payments {
		existing[paymentKey{p.OrderID, p.Date.String(), p.Amount.String()}]++
	}

	var created []models.Payment
	for _, draft := range d.Payments {
		label := fmt.Sprintf("%s %s %s", draft.CustomerName, draft.Date, draft.Amount.StringFixed(2))
		if draft.Amount.IsNegative() {
			im.res.skip(models.KindPayments, label, ReasonNegativeAmount)
			continue
		}
		customerID, ok := customerIDs[models.NameKey(draft.CustomerName)]
		if !ok {
			im.res.skip(models.KindPayments, label, ReasonUnknownCustomer)
			continue
		}
		if !draft.HasOrder {
			im.res.skip(models.KindPayments, label, ReasonUnresolvedOrder)
			continue
		}
		orderID, ok := ordersByRef[orderRef{customerID, draft.OrderDate.String(), draft.OrderTotal.StringFixed(2)}]
		if !ok {
			im.res.skip(models.KindPayments, label, ReasonUnresolvedOrder)
			continue
		}

		key := paymentKey{orderID, draft.Date.String(), draft.Amount.String()}
		if existing[key] > 0 {
			existing[key]--
			im.res.skip(models.KindPayments, label, "")
			continue
		}
		created = append(created, models.Payment{
			OrderID:   orderID,
			Amount:    draft.Amount,
			Date:      draft.Date,
			Reference: draft.Reference,
		})
	}

	ids, err := im.write(models.KindPayments, toAny(created))
	if err != nil {
		return err
	}
	touched := map[string]bool{}
	for i := range created {
		created[i].ID = ids[i]
		touched[created[i].OrderID] = true
	}
	l.Payments = append(l.Payments, created...)
	im.res.Created.Payments = len(created)

	byOrder := map[string][]models.Payment{}
	for _, p := range l.Payments {
		if touched[p.OrderID] {
			byOrder[p.OrderID] = append(byOrder[p.OrderID], p)
		}
	}
	for i := range l.Orders {
		o := &l.Orders[i]
		if touched[o.ID] {
			ledger.RecomputeSettlement(*o, byOrder[o.ID]).Apply(o)
			im.res.Recompute = append(im.res.Recompute, o.ID)
		}
	}
	slices.Sort(im.res.Recompute)
	return nil
}
