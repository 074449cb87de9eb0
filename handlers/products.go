package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/satheeshds/orderledger/models"
)

// ListProducts lists all products
// @Summary      List products
// @Description  Get the product catalog with retail and wholesale prices.
// @Tags         products
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Product}
// @Router       /products [get]
// @Security     BasicAuth
func ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := Ledger.ListProducts(r.Context(), accountOf(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct retrieves a single product by ID
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  Response{data=models.Product}
// @Failure      404  {object}  Response{error=string}
// @Router       /products/{id} [get]
// @Security     BasicAuth
func GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := Ledger.GetProduct(r.Context(), accountOf(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreateProduct creates a new product
// @Summary      Create product
// @Description  Add a product. Descriptions are unique regardless of case.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        product  body      models.ProductInput  true  "Product contents"
// @Success      201      {object}  Response{data=models.Product}
// @Failure      400      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Router       /products [post]
// @Security     BasicAuth
func CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := Ledger.CreateProduct(r.Context(), accountOf(r), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProduct updates an existing product
// @Summary      Update product
// @Description  Change a product. Orders keep the prices they were sold at.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Product ID"
// @Param        product  body      models.ProductInput  true  "Updated product contents"
// @Success      200      {object}  Response{data=models.Product}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Router       /products/{id} [put]
// @Security     BasicAuth
func UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input models.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	p, err := Ledger.UpdateProduct(r.Context(), accountOf(r), chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProduct deletes a product
// @Summary      Delete product
// @Description  Remove a product that no order uses.
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /products/{id} [delete]
// @Security     BasicAuth
func DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := Ledger.DeleteProduct(r.Context(), accountOf(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
