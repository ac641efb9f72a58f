package handlers

import (
	"net/http"
	"strconv"
	"time"

	"retail-backend/internal/models"
	"retail-backend/internal/repositories"
	"retail-backend/pkg/utils"
)

// TransactionHandler exposes the raw customer ledger and the posting audit
// trail for back-office review.
type TransactionHandler struct {
	Transactions *repositories.TransactionRepository
	Audits       *repositories.AuditRepository
}

func NewTransactionHandler(transactions *repositories.TransactionRepository,
	audits *repositories.AuditRepository) *TransactionHandler {
	return &TransactionHandler{Transactions: transactions, Audits: audits}
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &models.TransactionFilter{
		Type: models.TransactionType(q.Get("type")),
	}
	filter.CustomerID, _ = strconv.Atoi(q.Get("customer_id"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	if s := q.Get("start"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.StartDate = &t
		}
	}
	if e := q.Get("end"); e != "" {
		if t, err := time.Parse("2006-01-02", e); err == nil {
			filter.EndDate = &t
		}
	}

	entries, err := h.Transactions.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}

func (h *TransactionHandler) ListAudits(w http.ResponseWriter, r *http.Request) {
	customerID, _ := strconv.Atoi(r.URL.Query().Get("customer_id"))
	if customerID <= 0 {
		http.Error(w, "customer_id parameter is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	audits, err := h.Audits.ListByCustomer(r.Context(), customerID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, audits)
}
