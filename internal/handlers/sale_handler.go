package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"retail-backend/internal/fx"
	"retail-backend/internal/middleware"
	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
	"retail-backend/internal/services"
	"retail-backend/pkg/utils"
)

type SaleHandler struct {
	Service *services.SaleService
	Fx      *fx.Provider
}

func NewSaleHandler(s *services.SaleService, fxp *fx.Provider) *SaleHandler {
	return &SaleHandler{Service: s, Fx: fxp}
}

func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(r.Context())
	result, err := h.Service.CreateSale(r.Context(), &req, h.Fx.Current().Table(), actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if errors.Is(err, services.ErrEmptySale) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.JSON(w, http.StatusCreated, result)
}

func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	sale, err := h.Service.GetSale(r.Context(), id)
	if err != nil {
		http.Error(w, "Sale not found", http.StatusNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, sale)
}

func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.Atoi(r.URL.Query().Get("customer_id"))

	var start, end *time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			start = &t
		}
	}
	if e := r.URL.Query().Get("end"); e != "" {
		if t, err := time.Parse("2006-01-02", e); err == nil {
			end = &t
		}
	}

	sales, err := h.Service.ListSales(r.Context(), customerID, start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, sales)
}

func (h *SaleHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Service.ListOverdue(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, sales)
}

// ProcessReturn takes goods back and posts the refund.
func (h *SaleHandler) ProcessReturn(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSaleReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.SaleID, _ = strconv.Atoi(mux.Vars(r)["id"])

	actorID, _ := middleware.GetUserIDFromContext(r.Context())
	returns, err := h.Service.ProcessReturn(r.Context(), &req, actorID)
	if err != nil {
		if errors.Is(err, services.ErrOverReturn) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.JSON(w, http.StatusCreated, returns)
}
