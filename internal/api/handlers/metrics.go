package handlers

import (
	"net/http"

	"github.com/wonny/stockpick/internal/contracts"
	"github.com/wonny/stockpick/pkg/logger"
)

// BatchReader returns the latest collected batch, nil before the first one
type BatchReader interface {
	Latest() *contracts.Batch
}

// MetricsHandler serves the latest metric batch
// ⭐ SSOT: 메트릭 API 핸들러는 이 구조체에서만
type MetricsHandler struct {
	batches BatchReader
	logger  *logger.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(batches BatchReader, log *logger.Logger) *MetricsHandler {
	return &MetricsHandler{
		batches: batches,
		logger:  log,
	}
}

// MetricsResponse is the latest batch with its size
type MetricsResponse struct {
	*contracts.Batch
	Count        int `json:"count"`
	SkippedCount int `json:"skipped_count"`
}

// GetMetrics returns the latest batch and the skipped tickers
// GET /api/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	batch := h.batches.Latest()
	if batch == nil {
		respondError(w, http.StatusServiceUnavailable, "Metrics are still being collected")
		return
	}

	respondJSON(w, http.StatusOK, MetricsResponse{
		Batch:        batch,
		Count:        len(batch.Metrics),
		SkippedCount: len(batch.Skipped),
	})
}
