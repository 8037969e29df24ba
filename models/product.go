package models

// Supplier represents a wholesale supplier
type Supplier struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	SLADays int    `json:"sla_days" db:"sla_days"`
}

// TableName returns the table name for the Supplier model
func (Supplier) TableName() string {
	return "suppliers"
}

// Product represents a catalog item. SKU is unique and immutable; retail_price
// always reflects the most recently applied price event for that SKU.
type Product struct {
	ID             int64   `json:"id" db:"id"`
	SKU            string  `json:"sku" db:"sku"`
	Name           string  `json:"name" db:"name"`
	Category       string  `json:"category" db:"category"`
	WholesalePrice float64 `json:"wholesale_price" db:"wholesale_price"`
	RetailPrice    float64 `json:"retail_price" db:"retail_price"`
	SupplierID     int64   `json:"supplier_id" db:"supplier_id"`
	IsActive       bool    `json:"is_active" db:"is_active"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// CatalogEntry is the view of a product shared with the agents as context.
type CatalogEntry struct {
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	WholesalePrice float64 `json:"wholesale_price"`
	RetailPrice    float64 `json:"retail_price"`
}

// CatalogView converts products to the agent-facing catalog representation.
func CatalogView(products []Product) []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(products))
	for _, p := range products {
		entries = append(entries, CatalogEntry{
			SKU:            p.SKU,
			Name:           p.Name,
			Category:       p.Category,
			WholesalePrice: p.WholesalePrice,
			RetailPrice:    p.RetailPrice,
		})
	}
	return entries
}
