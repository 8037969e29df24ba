package handlers

import (
	"context"
	"net/http"

	"github.com/wayline/suppliersync/models"
	"go.uber.org/zap"
)

// PriceTrailReader is the pricing view the handler needs
type PriceTrailReader interface {
	ListPriceEvents(ctx context.Context, limit int) ([]models.PriceEvent, error)
	ListRejectedPrices(ctx context.Context, limit int) ([]models.RejectedPrice, error)
}

// PricingHandler handles price trail read requests
type PricingHandler struct {
	pricing PriceTrailReader
	logger  *zap.Logger
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(pricing PriceTrailReader, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{
		pricing: pricing,
		logger:  logger,
	}
}

// HandleListPriceEvents handles GET /api/price-events
func (h *PricingHandler) HandleListPriceEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultListLimit)
	events, err := h.pricing.ListPriceEvents(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list price events", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error",
			"An internal error occurred")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: events})
}

// HandleListRejectedPrices handles GET /api/rejected-prices
func (h *PricingHandler) HandleListRejectedPrices(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, defaultListLimit)
	rejected, err := h.pricing.ListRejectedPrices(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list rejected prices", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error",
			"An internal error occurred")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: rejected})
}
