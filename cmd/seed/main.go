// Seeds the catalog with the demo furniture inventory. Safe to re-run:
// suppliers and products are upserted by id and SKU.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/wayline/suppliersync/config"
	"github.com/wayline/suppliersync/internal/observability"
	"github.com/wayline/suppliersync/models"
	"github.com/wayline/suppliersync/repositories/postgres"
	"go.uber.org/zap"
)

var suppliers = []models.Supplier{
	{ID: 1, Name: "Coastal Home Co", SLADays: 3},
	{ID: 2, Name: "Urban Loft Inc", SLADays: 4},
	{ID: 3, Name: "Modern Living Essentials", SLADays: 2},
	{ID: 4, Name: "Designer Home Accents", SLADays: 3},
	{ID: 5, Name: "Sleep Innovations Inc", SLADays: 5},
}

var products = []models.Product{
	{SKU: "SOF-001", Name: `Westwood 84" Gray Fabric Sofa with Reversible Chaise - Transitional Modern Living Room Furniture`, Category: "Couches", WholesalePrice: 520.00, RetailPrice: 899.00, SupplierID: 1, IsActive: true},
	{SKU: "TBL-002", Name: "Madison Extendable Dining Table in Weathered Oak Finish - Seats 6 to 8 People", Category: "Dining", WholesalePrice: 380.00, RetailPrice: 649.00, SupplierID: 2, IsActive: true},
	{SKU: "CHA-003", Name: "Grey Tufted Button Back Upholstered Dining Chair Set of 2 - Modern Kitchen Seating", Category: "Dining", WholesalePrice: 145.00, RetailPrice: 249.00, SupplierID: 3, IsActive: true},
	{SKU: "BED-004", Name: "Kingsley Queen Size Upholstered Platform Bed Frame with Adjustable Headboard in Charcoal Gray", Category: "Bedroom", WholesalePrice: 410.00, RetailPrice: 699.00, SupplierID: 1, IsActive: true},
	{SKU: "DESK-005", Name: `Harper 48" Computer Desk in Espresso Brown - Home Office Writing Table`, Category: "Office", WholesalePrice: 185.00, RetailPrice: 329.00, SupplierID: 2, IsActive: true},
	{SKU: "RUG-006", Name: "Safavieh Monaco Collection 8x10 Area Rug in Beige and Blue Geometric Pattern - Machine Washable", Category: "Living", WholesalePrice: 280.00, RetailPrice: 479.00, SupplierID: 3, IsActive: true},
	{SKU: "LAMP-007", Name: "Brass Adjustable Swivel Floor Lamp with USB Charging Port - Modern Reading Light", Category: "Living", WholesalePrice: 85.00, RetailPrice: 149.00, SupplierID: 4, IsActive: true},
	{SKU: "CAB-008", Name: "Bedford 5-Drawer Dresser in White Oak Finish - Bedroom Storage Furniture", Category: "Bedroom", WholesalePrice: 450.00, RetailPrice: 799.00, SupplierID: 2, IsActive: true},
	{SKU: "SEC-009", Name: "Bradford 2-Piece Sectional Sofa in Linen Gray with Pillows - Reversible Chaise Configuration", Category: "Couches", WholesalePrice: 680.00, RetailPrice: 1199.00, SupplierID: 1, IsActive: true},
	{SKU: "BAR-010", Name: `Industrial 30" Bar Cart with Wine Glass Rack and Wood Shelf - Mobile Kitchen Island`, Category: "Kitchen", WholesalePrice: 195.00, RetailPrice: 349.00, SupplierID: 4, IsActive: true},
	{SKU: "TVS-011", Name: `Modern TV Stand with Sliding Barn Doors and Media Storage Compartment - 60" Wide`, Category: "Living", WholesalePrice: 320.00, RetailPrice: 549.00, SupplierID: 2, IsActive: true},
	{SKU: "OTM-012", Name: "Verona Oversized Tufted Ottoman Bench in Navy Blue - Storage Footrest for Living Room", Category: "Living", WholesalePrice: 165.00, RetailPrice: 289.00, SupplierID: 3, IsActive: true},
	{SKU: "MAT-013", Name: "Casper Sleep Original Queen Memory Foam Mattress - Medium Firm Support with AirScape Cooling", Category: "Bedroom", WholesalePrice: 520.00, RetailPrice: 995.00, SupplierID: 5, IsActive: true},
	{SKU: "ACC-014", Name: "Coastal Farmhouse Wall Decor Set of 3 Wooden Signs - Beach Inspired Home Accents", Category: "Living", WholesalePrice: 45.00, RetailPrice: 89.00, SupplierID: 4, IsActive: true},
	{SKU: "CUR-015", Name: "Blackout Curtain Panels Set of 2 in Charcoal Gray - Thermal Insulated Window Treatment", Category: "Living", WholesalePrice: 75.00, RetailPrice: 139.00, SupplierID: 3, IsActive: true},
	{SKU: "OTM-016", Name: "Alma Dark Brown Leather Reclining Ottoman with Tray Top - Living Room Footrest", Category: "Seating", WholesalePrice: 125.00, RetailPrice: 219.00, SupplierID: 1, IsActive: true},
	{SKU: "BOO-017", Name: "Modular 6-Cube Bookshelf Organizer in Espresso Brown - Freestanding Storage System", Category: "Storage", WholesalePrice: 95.00, RetailPrice: 179.00, SupplierID: 2, IsActive: true},
	{SKU: "CHA-018", Name: "Bermuda Outdoor Patio Dining Chair Set of 4 in Teak Wood - Weather Resistant Seating", Category: "Outdoor", WholesalePrice: 220.00, RetailPrice: 399.00, SupplierID: 4, IsActive: true},
	{SKU: "SOF-019", Name: `Blake 72" Sofa Bed with Trundle Storage in Navy Blue Microfiber - Convertible Furniture`, Category: "Couches", WholesalePrice: 395.00, RetailPrice: 679.00, SupplierID: 3, IsActive: true},
	{SKU: "DIN-020", Name: "Monterey Rustic Farmhouse Rectangular Dining Table in Distressed Brown - Seats 6 People", Category: "Dining", WholesalePrice: 520.00, RetailPrice: 899.00, SupplierID: 2, IsActive: true},
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.InitSchema(ctx); err != nil {
		logger.Fatal("failed to initialize schema", zap.Error(err))
	}

	catalog := postgres.NewCatalogRepository(db, logger)

	for i := range suppliers {
		if err := catalog.UpsertSupplier(ctx, &suppliers[i]); err != nil {
			logger.Fatal("failed to upsert supplier",
				zap.Int64("id", suppliers[i].ID),
				zap.Error(err))
		}
	}
	for i := range products {
		if err := catalog.UpsertProduct(ctx, &products[i]); err != nil {
			logger.Fatal("failed to upsert product",
				zap.String("sku", products[i].SKU),
				zap.Error(err))
		}
	}

	logger.Info("catalog seeded",
		zap.Int("suppliers", len(suppliers)),
		zap.Int("products", len(products)))
}
