package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wayline/suppliersync/internal/llm"
	"github.com/wayline/suppliersync/internal/orchestrator"
	"go.uber.org/zap"
)

// OrchestrationService defines the interface for running sync cycles
type OrchestrationService interface {
	// Run executes one orchestration cycle and returns its committed result
	Run(ctx context.Context) (*orchestrator.Result, error)
}

// OrchestrationHandler handles orchestration-related HTTP requests
type OrchestrationHandler struct {
	service OrchestrationService
	logger  *zap.Logger
}

// NewOrchestrationHandler creates a new OrchestrationHandler
func NewOrchestrationHandler(service OrchestrationService, logger *zap.Logger) *OrchestrationHandler {
	return &OrchestrationHandler{
		service: service,
		logger:  logger,
	}
}

// HandleRun handles POST /api/orchestrate
func (h *OrchestrationHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Run(r.Context())
	if err != nil {
		h.logger.Error("orchestration run failed", zap.Error(err))

		var callErr *llm.CallError
		if errors.As(err, &callErr) {
			respondError(w, http.StatusBadGateway, "upstream_error",
				"The completion provider rejected or failed the request")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error",
			"An internal error occurred")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: result})
}
