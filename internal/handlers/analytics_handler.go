package handlers

import (
	"net/http"

	"github.com/Varun5711/taskapi/internal/analytics"
	"github.com/Varun5711/taskapi/internal/logger"
	"github.com/Varun5711/taskapi/internal/middleware"
)

type AnalyticsHandler struct {
	analytics *analytics.Service
	log       *logger.Logger
}

func NewAnalyticsHandler(service *analytics.Service, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: service,
		log:       log,
	}
}

func (h *AnalyticsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Statistics(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, "", stats)
}

func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.analytics.Trends(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, "", trends)
}
