package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/satheeshds/orderledger/models"
)

// ListCustomers lists all customers
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Customer}
// @Router       /customers [get]
// @Security     BasicAuth
func ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := Ledger.ListCustomers(r.Context(), accountOf(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

// GetCustomer retrieves a single customer by ID
// @Summary      Get customer
// @Tags         customers
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  Response{data=models.Customer}
// @Failure      404  {object}  Response{error=string}
// @Router       /customers/{id} [get]
// @Security     BasicAuth
func GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := Ledger.GetCustomer(r.Context(), accountOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCustomer creates a new customer
// @Summary      Create customer
// @Description  Add a customer. Names are unique regardless of case.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        customer  body      models.CustomerInput  true  "Customer contents"
// @Success      201       {object}  Response{data=models.Customer}
// @Failure      400       {object}  Response{error=string}
// @Failure      409       {object}  Response{error=string}
// @Router       /customers [post]
// @Security     BasicAuth
func CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var input models.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	c, err := Ledger.CreateCustomer(r.Context(), accountOf(r), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCustomer updates an existing customer
// @Summary      Update customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id        path      string                true  "Customer ID"
// @Param        customer  body      models.CustomerInput  true  "Updated customer contents"
// @Success      200       {object}  Response{data=models.Customer}
// @Failure      400       {object}  Response{error=string}
// @Failure      404       {object}  Response{error=string}
// @Failure      409       {object}  Response{error=string}
// @Router       /customers/{id} [put]
// @Security     BasicAuth
func UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var input models.CustomerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	c, err := Ledger.UpdateCustomer(r.Context(), accountOf(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCustomer deletes a customer
// @Summary      Delete customer
// @Description  Remove a customer without orders.
// @Tags         customers
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /customers/{id} [delete]
// @Security     BasicAuth
func DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := Ledger.DeleteCustomer(r.Context(), accountOf(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
