package models

// Kind names a document collection within an account.
type Kind string

const (
	KindProducts      Kind = "products"
	KindCustomers     Kind = "customers"
	KindOrders        Kind = "orders"
	KindPayments      Kind = "payments"
	KindProfitability Kind = "profitability"
)
