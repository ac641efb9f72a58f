package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"retail-backend/internal/fx"
	"retail-backend/internal/middleware"
	"retail-backend/internal/models"
	"retail-backend/internal/services"
	"retail-backend/pkg/utils"
)

type PaymentHandler struct {
	Service *services.PaymentService
	Fx      *fx.Provider
}

func NewPaymentHandler(s *services.PaymentService, fxp *fx.Provider) *PaymentHandler {
	return &PaymentHandler{Service: s, Fx: fxp}
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(r.Context())
	payment, posted, err := h.Service.CreatePayment(r.Context(), &req, h.Fx.Current().Table(), actorID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"payment":     payment,
		"new_balance": posted.NewBalance,
	})
}

func (h *PaymentHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.Atoi(r.URL.Query().Get("customer_id"))
	if customerID <= 0 {
		http.Error(w, "customer_id parameter is required", http.StatusBadRequest)
		return
	}

	payments, err := h.Service.ListByCustomer(r.Context(), customerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}
