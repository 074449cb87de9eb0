package handlers

import "github.com/go-chi/chi/v5"

// Routes registers the API endpoints on r.
func Routes(r chi.Router) {
	// Products
	r.Get("/products", ListProducts)
	r.Post("/products", CreateProduct)
	r.Get("/products/{id}", GetProduct)
	r.Put("/products/{id}", UpdateProduct)
	r.Delete("/products/{id}", DeleteProduct)

	// Customers
	r.Get("/customers", ListCustomers)
	r.Post("/customers", CreateCustomer)
	r.Get("/customers/{id}", GetCustomer)
	r.Put("/customers/{id}", UpdateCustomer)
	r.Delete("/customers/{id}", DeleteCustomer)

	// Orders
	r.Get("/orders", ListOrders)
	r.Post("/orders", CreateOrder)
	r.Get("/orders/{id}", GetOrder)
	r.Put("/orders/{id}", UpdateOrder)
	r.Delete("/orders/{id}", DeleteOrder)
	r.Post("/orders/{id}/recompute", RecomputeOrder)
	r.Post("/reconcile", Reconcile)

	// Payments
	r.Get("/payments", ListPayments)
	r.Post("/payments", CreatePayment)
	r.Get("/payments/{id}", GetPayment)
	r.Put("/payments/{id}", UpdatePayment)
	r.Delete("/payments/{id}", DeletePayment)

	// Snapshot
	r.Get("/snapshot", DownloadSnapshot)
	r.Post("/snapshot", UploadSnapshot)

	// Dashboard
	r.Get("/dashboard", GetDashboard)
	r.Get("/profitability", GetProfitability)
	r.Put("/profitability/{period}/{productId}", SetProfitability)
}
