package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"retail-backend/internal/fx"
	"retail-backend/internal/models"
	"retail-backend/internal/services"
	"retail-backend/pkg/utils"
)

type SupplierHandler struct {
	Service *services.SupplierService
	Fx      *fx.Provider
}

func NewSupplierHandler(s *services.SupplierService, fxp *fx.Provider) *SupplierHandler {
	return &SupplierHandler{Service: s, Fx: fxp}
}

func (h *SupplierHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	supplier, err := h.Service.CreateSupplier(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusCreated, supplier)
}

func (h *SupplierHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	supplier, err := h.Service.GetSupplier(r.Context(), id)
	if err != nil {
		http.Error(w, "Supplier not found", http.StatusNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, supplier)
}

func (h *SupplierHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Service.ListSuppliers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, suppliers)
}

func (h *SupplierHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.CreateSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	supplier, err := h.Service.UpdateSupplier(r.Context(), id, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusOK, supplier)
}

func (h *SupplierHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	if err := h.Service.DeleteSupplier(r.Context(), id); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SupplierHandler) LinkProduct(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProductSupplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.SupplierID, _ = strconv.Atoi(mux.Vars(r)["id"])

	link, err := h.Service.LinkProduct(r.Context(), &req, h.Fx.Current().Table())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusCreated, link)
}

func (h *SupplierHandler) UnlinkProduct(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	supplierID, _ := strconv.Atoi(vars["id"])
	productID, _ := strconv.Atoi(vars["product_id"])

	if err := h.Service.UnlinkProduct(r.Context(), productID, supplierID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ComparePrices lists every supplier's offer for a product in TRY at live
// rates, cheapest flagged.
func (h *SupplierHandler) ComparePrices(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.Atoi(mux.Vars(r)["product_id"])

	comparisons, err := h.Service.ComparePrices(r.Context(), productID, h.Fx.Current().Table())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, comparisons)
}
