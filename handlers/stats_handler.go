package handlers

import (
	"context"
	"net/http"

	"github.com/wayline/suppliersync/models"
	"go.uber.org/zap"
)

// defaultRunLimit bounds how many recent runs the metrics endpoint breaks out
const defaultRunLimit = 20

// StatsReader is the aggregation view the handler needs
type StatsReader interface {
	Overview(ctx context.Context) (models.StatsOverview, error)
	AgentMetrics(ctx context.Context, runLimit int) (models.AgentMetrics, error)
}

// StatsHandler handles dashboard aggregation requests
type StatsHandler struct {
	stats  StatsReader
	logger *zap.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(stats StatsReader, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger,
	}
}

// HandleStats handles GET /api/stats
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	overview, err := h.stats.Overview(r.Context())
	if err != nil {
		h.logger.Error("failed to aggregate stats", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error",
			"An internal error occurred")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: overview})
}

// HandleMetrics handles GET /api/metrics
func (h *StatsHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	runLimit := parseLimit(r, defaultRunLimit)
	metrics, err := h.stats.AgentMetrics(r.Context(), runLimit)
	if err != nil {
		h.logger.Error("failed to aggregate agent metrics", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error",
			"An internal error occurred")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: metrics})
}
