package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wayline/suppliersync/models"
	"github.com/wayline/suppliersync/repositories"
	"go.uber.org/zap"
)

// CatalogRepository implements repositories.CatalogRepository
type CatalogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *DB, logger *zap.Logger) repositories.CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

// ListActive returns all active products ordered by SKU
func (r *CatalogRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT id, sku, name, category, wholesale_price, retail_price, supplier_id, is_active
		FROM products
		WHERE is_active = true
		ORDER BY sku
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category,
			&p.WholesalePrice, &p.RetailPrice, &p.SupplierID, &p.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// GetRetailPrice returns the catalog retail price for a SKU
func (r *CatalogRepository) GetRetailPrice(ctx context.Context, sku string) (float64, bool, error) {
	query := `SELECT retail_price FROM products WHERE sku = $1`

	executor := GetExecutor(ctx, r.db)
	var price float64
	err := executor.QueryRowContext(ctx, query, sku).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get retail price for %s: %w", sku, err)
	}
	return price, true, nil
}

// UpdateRetailPrice sets the catalog retail price for a SKU
func (r *CatalogRepository) UpdateRetailPrice(ctx context.Context, sku string, price float64) error {
	query := `UPDATE products SET retail_price = $1 WHERE sku = $2`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, price, sku); err != nil {
		return fmt.Errorf("failed to update retail price for %s: %w", sku, err)
	}
	r.logger.Debug("retail price updated", zap.String("sku", sku), zap.Float64("price", price))
	return nil
}

// UpdateWholesalePrice sets the wholesale price for a SKU
func (r *CatalogRepository) UpdateWholesalePrice(ctx context.Context, sku string, price float64) error {
	query := `UPDATE products SET wholesale_price = $1 WHERE sku = $2`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, price, sku); err != nil {
		return fmt.Errorf("failed to update wholesale price for %s: %w", sku, err)
	}
	return nil
}

// UpdateTextField sets the name or category for a SKU. The field name is
// restricted to the mutable set; it is never interpolated from user input
// beyond that check.
func (r *CatalogRepository) UpdateTextField(ctx context.Context, sku, field, value string) error {
	var query string
	switch field {
	case models.FieldName:
		query = `UPDATE products SET name = $1 WHERE sku = $2`
	case models.FieldCategory:
		query = `UPDATE products SET category = $1 WHERE sku = $2`
	default:
		return fmt.Errorf("field %q is not a mutable text field", field)
	}

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, value, sku); err != nil {
		return fmt.Errorf("failed to update %s for %s: %w", field, sku, err)
	}
	return nil
}

// UpsertSupplier inserts a supplier or updates it by id
func (r *CatalogRepository) UpsertSupplier(ctx context.Context, supplier *models.Supplier) error {
	query := `
		INSERT INTO suppliers (id, name, sla_days)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, sla_days = EXCLUDED.sla_days
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, supplier.ID, supplier.Name, supplier.SLADays); err != nil {
		return fmt.Errorf("failed to upsert supplier %d: %w", supplier.ID, err)
	}
	return nil
}

// UpsertProduct inserts a product or updates it by SKU
func (r *CatalogRepository) UpsertProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (sku, name, category, wholesale_price, retail_price, supplier_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			wholesale_price = EXCLUDED.wholesale_price,
			retail_price = EXCLUDED.retail_price,
			supplier_id = EXCLUDED.supplier_id,
			is_active = EXCLUDED.is_active
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query,
		product.SKU, product.Name, product.Category,
		product.WholesalePrice, product.RetailPrice,
		product.SupplierID, product.IsActive); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", product.SKU, err)
	}
	return nil
}
