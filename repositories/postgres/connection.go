package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/wayline/suppliersync/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	dsn := cfg.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// NewDBFromSQL wraps an existing *sql.DB (used by tests with sqlmock)
func NewDBFromSQL(db *sql.DB, logger *zap.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// schemaVersion is bumped when InitSchema changes shape
const schemaVersion = 1

// InitSchema initializes the database schema. Idempotent; runs once at
// startup before any orchestration cycle, never on the per-cycle hot path.
func (db *DB) InitSchema(ctx context.Context) error {
	versionTable := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version BIGINT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := db.ExecContext(ctx, versionTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	schema := `
		-- Suppliers table
		CREATE TABLE IF NOT EXISTS suppliers (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			sla_days INTEGER NOT NULL DEFAULT 3
		);

		-- Products table
		CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			sku VARCHAR(64) NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category VARCHAR(100) NOT NULL,
			wholesale_price DOUBLE PRECISION NOT NULL,
			retail_price DOUBLE PRECISION NOT NULL,
			supplier_id INTEGER NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true
		);

		-- Applied price changes (append-only)
		CREATE TABLE IF NOT EXISTS price_events (
			id BIGSERIAL PRIMARY KEY,
			sku VARCHAR(64) NOT NULL,
			prev_price DOUBLE PRECISION,
			new_price DOUBLE PRECISION NOT NULL,
			reason TEXT,
			run_id VARCHAR(64),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Governance rejections (append-only)
		CREATE TABLE IF NOT EXISTS rejected_prices (
			id BIGSERIAL PRIMARY KEY,
			sku VARCHAR(64),
			proposed_price DOUBLE PRECISION,
			current_price DOUBLE PRECISION,
			reject_reason VARCHAR(64),
			reject_details TEXT,
			run_id VARCHAR(64),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Supplier update audit trail (append-only)
		CREATE TABLE IF NOT EXISTS supplier_updates (
			id BIGSERIAL PRIMARY KEY,
			sku VARCHAR(64) NOT NULL,
			field VARCHAR(32) NOT NULL,
			old_value TEXT,
			new_value TEXT NOT NULL,
			reason TEXT,
			run_id VARCHAR(64),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- CX events (append-only)
		CREATE TABLE IF NOT EXISTS cx_events (
			id BIGSERIAL PRIMARY KEY,
			sku VARCHAR(64),
			event_type VARCHAR(64) NOT NULL,
			action VARCHAR(64) NOT NULL,
			details TEXT NOT NULL,
			run_id VARCHAR(64),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Agent call telemetry (append-only)
		CREATE TABLE IF NOT EXISTS agent_logs (
			id BIGSERIAL PRIMARY KEY,
			agent VARCHAR(32) NOT NULL,
			step VARCHAR(64) NOT NULL,
			prompt TEXT,
			response TEXT,
			tokens_in INTEGER NOT NULL DEFAULT 0,
			tokens_out INTEGER NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			cost_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			run_id VARCHAR(64),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku);
		CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active);
		CREATE INDEX IF NOT EXISTS idx_price_events_sku_created ON price_events(sku, created_at);
		CREATE INDEX IF NOT EXISTS idx_rejected_prices_sku_created ON rejected_prices(sku, created_at);
		CREATE INDEX IF NOT EXISTS idx_cx_events_sku_created ON cx_events(sku, created_at);
		CREATE INDEX IF NOT EXISTS idx_agent_logs_run ON agent_logs(run_id);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	record := `
		INSERT INTO schema_migrations (version) VALUES ($1)
		ON CONFLICT (version) DO NOTHING
	`
	if _, err := db.ExecContext(ctx, record, schemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	db.logger.Info("database schema initialized", zap.Int("version", schemaVersion))
	return nil
}
