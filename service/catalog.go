package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/store"
)

func (l *Ledger) ListProducts(ctx context.Context, account string) ([]models.Product, error) {
	return store.LoadProducts(ctx, l.store, account)
}

func (l *Ledger) GetProduct(ctx context.Context, account, id string) (models.Product, error) {
	doc, err := l.store.Get(ctx, account, models.KindProducts, id)
	if err != nil {
		return models.Product{}, err
	}
	return store.Decode[models.Product](doc)
}

// checkUnique fails with ErrConflict when another record (id != self) has the same name key.
func checkUnique[T any](records []T, self, name string, key func(T) (string, string)) error {
	for _, r := range records {
		id, other := key(r)
		if id != self && models.NameKey(other) == models.NameKey(name) {
			return fmt.Errorf("%q: %w", name, ErrConflict)
		}
	}
	return nil
}

func productKey(p models.Product) (string, string) { return p.ID, p.Description }

func (l *Ledger) CreateProduct(ctx context.Context, account string, in models.ProductInput) (models.Product, error) {
	if msg := in.Validate(); msg != "" {
		return models.Product{}, invalid(msg)
	}
	existing, err := l.ListProducts(ctx, account)
	if err != nil {
		return models.Product{}, err
	}
	if err := checkUnique(existing, "", in.Description, productKey); err != nil {
		return models.Product{}, fmt.Errorf("product %w", err)
	}

	p := in.Product("")
	if p.ID, err = l.store.Insert(ctx, account, models.KindProducts, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// UpdateProduct changes a catalog entry. Existing orders keep the prices they were sold at.
func (l *Ledger) UpdateProduct(ctx context.Context, account, id string, in models.ProductInput) (models.Product, error) {
	if msg := in.Validate(); msg != "" {
		return models.Product{}, invalid(msg)
	}
	if _, err := l.GetProduct(ctx, account, id); err != nil {
		return models.Product{}, err
	}
	existing, err := l.ListProducts(ctx, account)
	if err != nil {
		return models.Product{}, err
	}
	if err := checkUnique(existing, id, in.Description, productKey); err != nil {
		return models.Product{}, fmt.Errorf("product %w", err)
	}

	p := in.Product(id)
	if err := l.store.Put(ctx, account, models.KindProducts, id, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// DeleteProduct removes a product no order refers to.
func (l *Ledger) DeleteProduct(ctx context.Context, account, id string) error {
	orders, err := store.LoadOrders(ctx, l.store, account)
	if err != nil {
		return err
	}
	used := lo.ContainsBy(orders, func(o models.Order) bool {
		return lo.ContainsBy(o.Items, func(it models.LineItem) bool { return it.ProductID == id })
	})
	if used {
		return fmt.Errorf("product %s is used by orders: %w", id, ErrInUse)
	}
	return l.store.Delete(ctx, account, models.KindProducts, id)
}

func (l *Ledger) ListCustomers(ctx context.Context, account string) ([]models.Customer, error) {
	return store.LoadCustomers(ctx, l.store, account)
}

func (l *Ledger) GetCustomer(ctx context.Context, account, id string) (models.Customer, error) {
	doc, err := l.store.Get(ctx, account, models.KindCustomers, id)
	if err != nil {
		return models.Customer{}, err
	}
	return store.Decode[models.Customer](doc)
}

func customerKey(c models.Customer) (string, string) { return c.ID, c.Name }

func (l *Ledger) CreateCustomer(ctx context.Context, account string, in models.CustomerInput) (models.Customer, error) {
	if msg := in.Validate(); msg != "" {
		return models.Customer{}, invalid(msg)
	}
	existing, err := l.ListCustomers(ctx, account)
	if err != nil {
		return models.Customer{}, err
	}
	if err := checkUnique(existing, "", in.Name, customerKey); err != nil {
		return models.Customer{}, fmt.Errorf("customer %w", err)
	}

	c := in.Customer("")
	if c.ID, err = l.store.Insert(ctx, account, models.KindCustomers, c); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

func (l *Ledger) UpdateCustomer(ctx context.Context, account, id string, in models.CustomerInput) (models.Customer, error) {
	if msg := in.Validate(); msg != "" {
		return models.Customer{}, invalid(msg)
	}
	if _, err := l.GetCustomer(ctx, account, id); err != nil {
		return models.Customer{}, err
	}
	existing, err := l.ListCustomers(ctx, account)
	if err != nil {
		return models.Customer{}, err
	}
	if err := checkUnique(existing, id, in.Name, customerKey); err != nil {
		return models.Customer{}, fmt.Errorf("customer %w", err)
	}

	c := in.Customer(id)
	if err := l.store.Put(ctx, account, models.KindCustomers, id, c); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

// DeleteCustomer removes a customer without orders.
func (l *Ledger) DeleteCustomer(ctx context.Context, account, id string) error {
	orders, err := store.LoadOrders(ctx, l.store, account, store.Where("customerId", id))
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return fmt.Errorf("customer %s has %d orders: %w", id, len(orders), ErrInUse)
	}
	return l.store.Delete(ctx, account, models.KindCustomers, id)
}
