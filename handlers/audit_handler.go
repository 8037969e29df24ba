package handlers

import (
	"context"
	"net/http"

	"github.com/wayline/suppliersync/models"
	"go.uber.org/zap"
)

// CXTrailReader is the audit view the handler needs
type CXTrailReader interface {
	ListCXEvents(ctx context.Context, limit int) ([]models.CXEvent, error)
}

// AuditHandler handles audit trail read requests
type AuditHandler struct {
	audit  CXTrailReader
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audit CXTrailReader, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: logger,
	}
}

// HandleListCXEvents handles GET /api/cx-events
func (h *AuditHandler) HandleListCXEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultListLimit)
	events, err := h.audit.ListCXEvents(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list cx events", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error",
			"An internal error occurred")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: events})
}
