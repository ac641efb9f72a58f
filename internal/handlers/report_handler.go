package handlers

import (
	"fmt"
	"net/http"
	"time"

	"retail-backend/internal/services"
	"retail-backend/pkg/utils"
)

type ReportHandler struct {
	Service *services.ReportService
	Archive *services.ArchiveService
}

func NewReportHandler(s *services.ReportService, archive *services.ArchiveService) *ReportHandler {
	return &ReportHandler{Service: s, Archive: archive}
}

func serveReport(w http.ResponseWriter, name string, data []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

// DailySales serves the day's sales as CSV or PDF (?format=pdf).
func (h *ReportHandler) DailySales(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = parsed
	}
	format := r.URL.Query().Get("format")

	data, contentType, err := h.Service.DailySalesReport(r.Context(), day, format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ext := "csv"
	if format == "pdf" {
		ext = "pdf"
	}
	serveReport(w, "daily-sales-"+day.Format("2006-01-02")+"."+ext, data, contentType)
}

func (h *ReportHandler) CustomerBalances(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")

	data, contentType, err := h.Service.CustomerBalancesReport(r.Context(), format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ext := "csv"
	if format == "pdf" {
		ext = "pdf"
	}
	serveReport(w, "customer-balances."+ext, data, contentType)
}

func (h *ReportHandler) Stock(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.Service.StockReport(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	serveReport(w, "stock.csv", data, contentType)
}

// ListArchive lists archived report objects.
func (h *ReportHandler) ListArchive(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Archive.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"reports": keys})
}
