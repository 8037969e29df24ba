package handlers

import (
	"context"
	"net/http"

	"github.com/wayline/suppliersync/models"
	"go.uber.org/zap"
)

// CatalogReader is the catalog view the handler needs
type CatalogReader interface {
	ListActive(ctx context.Context) ([]models.Product, error)
}

// CatalogHandler handles catalog read requests
type CatalogHandler struct {
	catalog CatalogReader
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog CatalogReader, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// HandleListCatalog handles GET /api/catalog
func (h *CatalogHandler) HandleListCatalog(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list catalog", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error",
			"An internal error occurred")
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Data: products})
}
