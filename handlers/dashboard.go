package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/satheeshds/orderledger/models"
	"github.com/satheeshds/orderledger/service"
	"github.com/shopspring/decimal"
)

// monthParam reads year and month from the query, defaulting to the current month.
func monthParam(r *http.Request) (int, time.Month, bool) {
	today := models.Today()
	year, month := today.Year(), today.Month()
	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 {
			return 0, 0, false
		}
		year = y
	}
	if s := r.URL.Query().Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, false
		}
		month = time.Month(m)
	}
	return year, month, true
}

// GetDashboard retrieves the sales dashboard for a month
// @Summary      Get dashboard
// @Description  Daily and cumulative sales, sales per product and customer ranking for the month,
// @Description  plus every order with an outstanding balance.
// @Tags         dashboard
// @Produce      json
// @Param        year   query     int  false  "Year (defaults to current)"
// @Param        month  query     int  false  "Month 1-12 (defaults to current)"
// @Success      200    {object}  Response{data=reports.Dashboard}
// @Failure      400    {object}  Response{error=string}
// @Router       /dashboard [get]
// @Security     BasicAuth
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}
	l, err := Ledger.Load(r.Context(), accountOf(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	d, err := Reports.Dashboard(r.Context(), l, year, month, models.Today())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GetProfitability retrieves the profitability table for a month
// @Summary      Get profitability
// @Description  Apply the month's profit percentages to its sales per product.
// @Tags         dashboard
// @Produce      json
// @Param        year   query     int  false  "Year (defaults to current)"
// @Param        month  query     int  false  "Month 1-12 (defaults to current)"
// @Success      200    {object}  Response{data=reports.Profitability}
// @Failure      400    {object}  Response{error=string}
// @Router       /profitability [get]
// @Security     BasicAuth
func GetProfitability(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}
	account := accountOf(r)
	pct, err := Ledger.GetProfitability(r.Context(), account, service.PeriodOf(models.NewDate(year, month, 1)))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	l, err := Ledger.Load(r.Context(), account)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := Reports.Profitability(r.Context(), l, year, month, pct)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type percentageInput struct {
	Percentage decimal.Decimal `json:"percentage"`
}

// SetProfitability stores a product's profit percentage for a month
// @Summary      Set profitability
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        period     path      string           true  "Month (YYYY-MM)"
// @Param        productId  path      string           true  "Product ID"
// @Param        body       body      percentageInput  true  "Profit percentage"
// @Success      200        {object}  Response{data=map[string]string}
// @Failure      400        {object}  Response{error=string}
// @Failure      404        {object}  Response{error=string}
// @Router       /profitability/{period}/{productId} [put]
// @Security     BasicAuth
func SetProfitability(w http.ResponseWriter, r *http.Request) {
	var input percentageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	pct, err := Ledger.SetProfitability(r.Context(), accountOf(r), chi.URLParam(r, "period"), chi.URLParam(r, "productId"), input.Percentage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pct)
}
