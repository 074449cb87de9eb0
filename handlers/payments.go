package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/satheeshds/orderledger/models"
)

// ListPayments lists payments
// @Summary      List payments
// @Description  Get payments, newest first, with the order they settle.
// @Tags         payments
// @Produce      json
// @Param        orderId  query     string  false  "Filter by order"
// @Success      200      {object}  Response{data=[]service.PaymentView}
// @Router       /payments [get]
// @Security     BasicAuth
func ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := Ledger.ListPayments(r.Context(), accountOf(r), r.URL.Query().Get("orderId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// GetPayment retrieves a single payment by ID
// @Summary      Get payment
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  Response{data=models.Payment}
// @Failure      404  {object}  Response{error=string}
// @Router       /payments/{id} [get]
// @Security     BasicAuth
func GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := Ledger.GetPayment(r.Context(), accountOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePayment records a payment
// @Summary      Record payment
// @Description  Record a payment and recompute the order's status. Payments above the
// @Description  balance are accepted and the excess is returned as overpayment.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payment  body      models.PaymentInput  true  "Payment contents"
// @Success      201      {object}  Response{data=service.PaymentResult}
// @Failure      400      {object}  Response{error=string}
// @Router       /payments [post]
// @Security     BasicAuth
func CreatePayment(w http.ResponseWriter, r *http.Request) {
	var input models.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res, err := Ledger.RecordPayment(r.Context(), accountOf(r), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// UpdatePayment corrects a payment
// @Summary      Update payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Payment ID"
// @Param        payment  body      models.PaymentInput  true  "Updated payment contents"
// @Success      200      {object}  Response{data=service.PaymentResult}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Router       /payments/{id} [put]
// @Security     BasicAuth
func UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var input models.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	res, err := Ledger.UpdatePayment(r.Context(), accountOf(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DeletePayment deletes a payment
// @Summary      Delete payment
// @Description  Remove a payment and return its order with the recomputed status.
// @Tags         payments
// @Produce      json
// @Param        id   path      string  true  "Payment ID"
// @Success      200  {object}  Response{data=models.Order}
// @Failure      404  {object}  Response{error=string}
// @Router       /payments/{id} [delete]
// @Security     BasicAuth
func DeletePayment(w http.ResponseWriter, r *http.Request) {
	o, err := Ledger.DeletePayment(r.Context(), accountOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
