package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/service"
)

// ListOrders lists orders
// @Summary      List orders
// @Description  Get orders, newest first, with customer names and balances.
// @Tags         orders
// @Produce      json
// @Param        customerId  query     string  false  "Filter by customer"
// @Param        status      query     string  false  "Filter by status (Pending/Partial/Paid)"
// @Param        from        query     string  false  "Orders on or after date (YYYY-MM-DD)"
// @Param        to          query     string  false  "Orders on or before date (YYYY-MM-DD)"
// @Success      200         {object}  Response{data=[]service.OrderView}
// @Failure      400         {object}  Response{error=string}
// @Router       /orders [get]
// @Security     BasicAuth
func ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := service.OrderFilter{
		CustomerID: q.Get("customerId"),
		Status:     models.Status(q.Get("status")),
	}
	if f.Status != "" && !f.Status.Valid() {
		writeError(w, http.StatusBadRequest, "status must be one of: Pending, Partial, Paid")
		return
	}
	var err error
	if f.From, err = models.ParseDate(q.Get("from")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	if f.To, err = models.ParseDate(q.Get("to")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	orders, err := Ledger.ListOrders(r.Context(), accountOf(r), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder retrieves a single order by ID
// @Summary      Get order
// @Description  Get an order with its items and payments.
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  Response{data=service.OrderDetail}
// @Failure      404  {object}  Response{error=string}
// @Router       /orders/{id} [get]
// @Security     BasicAuth
func GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := Ledger.GetOrder(r.Context(), accountOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// CreateOrder creates a new order
// @Summary      Create order
// @Description  Price the items at their tier and save the order. Rows with an unknown product
// @Description  or a quantity below one are skipped and listed in skippedRows.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order  body      models.OrderInput  true  "Order contents"
// @Success      201    {object}  Response{data=service.OrderResult}
// @Failure      400    {object}  Response{error=string}
// @Router       /orders [post]
// @Security     BasicAuth
func CreateOrder(w http.ResponseWriter, r *http.Request) {
	var input models.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res, err := Ledger.CreateOrder(r.Context(), accountOf(r), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// UpdateOrder replaces an existing order
// @Summary      Update order
// @Description  Re-price an order from new contents. Its payments are kept and its status recomputed.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id     path      string             true  "Order ID"
// @Param        order  body      models.OrderInput  true  "Updated order contents"
// @Success      200    {object}  Response{data=service.OrderResult}
// @Failure      400    {object}  Response{error=string}
// @Failure      404    {object}  Response{error=string}
// @Router       /orders/{id} [put]
// @Security     BasicAuth
func UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var input models.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res, err := Ledger.ReplaceOrder(r.Context(), accountOf(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeleteOrder deletes an order
// @Summary      Delete order
// @Description  Remove an order together with its payments.
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /orders/{id} [delete]
// @Security     BasicAuth
func DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := Ledger.DeleteOrder(r.Context(), accountOf(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// RecomputeOrder recomputes an order's settlement
// @Summary      Recompute order
// @Description  Recompute amount paid and status from the order's payments.
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  Response{data=models.Order}
// @Failure      404  {object}  Response{error=string}
// @Router       /orders/{id}/recompute [post]
// @Security     BasicAuth
func RecomputeOrder(w http.ResponseWriter, r *http.Request) {
	o, err := Ledger.Recompute(r.Context(), accountOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// Reconcile repairs every order whose settlement drifted
// @Summary      Reconcile ledger
// @Description  Recompute all orders and return the ids of the ones that were repaired.
// @Tags         orders
// @Produce      json
// @Success      200  {object}  Response{data=[]string}
// @Router       /reconcile [post]
// @Security     BasicAuth
func Reconcile(w http.ResponseWriter, r *http.Request) {
	ids, err := Ledger.ReconcileAll(r.Context(), accountOf(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}
