package handlers

import (
	"net/http"

	"retail-backend/internal/monitoring"
	"retail-backend/pkg/utils"
)

type MonitoringHandler struct {
	Collector *monitoring.Collector
}

func NewMonitoringHandler(collector *monitoring.Collector) *MonitoringHandler {
	return &MonitoringHandler{Collector: collector}
}

func (h *MonitoringHandler) Stats(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, h.Collector.Collect(r.Context()))
}
