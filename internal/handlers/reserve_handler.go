package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"retail-backend/internal/fx"
	"retail-backend/internal/ledger"
	"retail-backend/internal/middleware"
	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
	"retail-backend/internal/services"
	"retail-backend/pkg/utils"
)

type ReserveHandler struct {
	Service *services.ReserveService
	Fx      *fx.Provider
}

func NewReserveHandler(s *services.ReserveService, fxp *fx.Provider) *ReserveHandler {
	return &ReserveHandler{Service: s, Fx: fxp}
}

func (h *ReserveHandler) CreateReserve(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reserve, err := h.Service.CreateReserve(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	utils.JSON(w, http.StatusCreated, reserve)
}

func (h *ReserveHandler) GetReserve(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	reserve, err := h.Service.GetReserve(r.Context(), id)
	if err != nil {
		http.Error(w, "Reserve not found", http.StatusNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, reserve)
}

func (h *ReserveHandler) ListReserves(w http.ResponseWriter, r *http.Request) {
	status := models.ReserveStatus(r.URL.Query().Get("status"))
	reserves, err := h.Service.ListReserves(r.Context(), status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, reserves)
}

// Convert turns an open reserve into a sale.
func (h *ReserveHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.ConvertReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(r.Context())
	result, err := h.Service.Convert(r.Context(), id, &req, h.Fx.Current().Table(), actorID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReserveConverted),
			errors.Is(err, services.ErrReserveNotOpen),
			errors.Is(err, repositories.ErrInsufficientStock):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, ledger.ErrQtyOutOfRange):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	utils.JSON(w, http.StatusOK, result)
}

func (h *ReserveHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrReserveConverted) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
