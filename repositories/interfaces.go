// Package repositories defines the data-access contracts for the catalog
// store and its audit trail. Implementations honor a transaction carried in
// the context so one orchestration cycle commits or rolls back atomically.
package repositories

import (
	"context"

	"github.com/wayline/suppliersync/models"
)

// CatalogRepository provides access to products and suppliers
type CatalogRepository interface {
	// ListActive returns all active products ordered by SKU
	ListActive(ctx context.Context) ([]models.Product, error)

	// GetRetailPrice returns the catalog retail price for a SKU.
	// The bool reports whether the SKU exists.
	GetRetailPrice(ctx context.Context, sku string) (float64, bool, error)

	// UpdateRetailPrice sets the catalog retail price for a SKU
	UpdateRetailPrice(ctx context.Context, sku string, price float64) error

	// UpdateWholesalePrice sets the wholesale price for a SKU
	UpdateWholesalePrice(ctx context.Context, sku string, price float64) error

	// UpdateTextField sets the name or category for a SKU
	UpdateTextField(ctx context.Context, sku, field, value string) error

	// UpsertSupplier inserts a supplier or updates it by id
	UpsertSupplier(ctx context.Context, supplier *models.Supplier) error

	// UpsertProduct inserts a product or updates it by SKU
	UpsertProduct(ctx context.Context, product *models.Product) error
}

// PricingRepository provides access to price events and rejections
type PricingRepository interface {
	// LatestPriceEvents returns the most recent price event per SKU
	// (highest id wins) for the given SKUs.
	LatestPriceEvents(ctx context.Context, skus []string) (map[string]models.PriceEvent, error)

	// InsertPriceEvent appends an applied price change
	InsertPriceEvent(ctx context.Context, event *models.PriceEvent) error

	// InsertRejectedPrice appends a governance rejection
	InsertRejectedPrice(ctx context.Context, rejected *models.RejectedPrice) error

	// ListPriceEvents returns the latest price events, newest first
	ListPriceEvents(ctx context.Context, limit int) ([]models.PriceEvent, error)

	// ListRejectedPrices returns the latest rejections, newest first
	ListRejectedPrices(ctx context.Context, limit int) ([]models.RejectedPrice, error)
}

// AuditRepository provides access to the supplier-update, CX and telemetry trails
type AuditRepository interface {
	// InsertSupplierUpdate appends a supplier update audit row
	InsertSupplierUpdate(ctx context.Context, record *models.SupplierUpdateRecord) error

	// InsertCXEvent appends a CX event
	InsertCXEvent(ctx context.Context, event *models.CXEvent) error

	// InsertAgentLog appends one agent telemetry record for a run
	InsertAgentLog(ctx context.Context, runID string, telemetry models.AgentTelemetry) error

	// ListCXEvents returns the latest CX events, newest first
	ListCXEvents(ctx context.Context, limit int) ([]models.CXEvent, error)
}

// StatsRepository aggregates read-only dashboard views
type StatsRepository interface {
	// Overview returns catalog and governance counters
	Overview(ctx context.Context) (models.StatsOverview, error)

	// AgentMetrics aggregates telemetry cost/latency, overall and per run
	AgentMetrics(ctx context.Context, runLimit int) (models.AgentMetrics, error)
}

// TransactionManager runs a function inside a database transaction
type TransactionManager interface {
	// InTransaction executes fn with a transaction carried in the context.
	// The transaction commits when fn returns nil and rolls back otherwise.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
